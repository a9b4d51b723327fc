package main

import (
	"log"

	"github.com/MrSnakeDoc/utmgen/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ utmgen failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ utmgen stopped with error: %v", err)
	}
}
