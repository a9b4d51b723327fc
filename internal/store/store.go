// Package store defines where session state lives between requests.
package store

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/utmgen/internal/domain"
)

// ErrSessionNotFound is returned by Get when no session exists for the id.
var ErrSessionNotFound = errors.New("session not found")

// Backend names accepted by configuration.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// UpdateFunc mutates a session. Returning an error discards every change.
type UpdateFunc func(s *domain.SessionState) error

// SessionStore persists session state keyed by session id.
type SessionStore interface {
	// Get returns a copy of the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*domain.SessionState, error)

	// Update applies fn to the session atomically, creating an empty session
	// first when none exists. Nothing is written when fn fails.
	Update(ctx context.Context, id string, fn UpdateFunc) (*domain.SessionState, error)

	// Delete discards the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Len returns the number of live sessions.
	Len(ctx context.Context) (int, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Name identifies the backend ("memory", "redis").
	Name() string
}
