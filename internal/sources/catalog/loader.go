package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Loader handles loading and parsing of a catalog file.
// Files ending in .toml are decoded as TOML, everything else as YAML.
type Loader struct {
	filePath string
}

// NewLoader creates a new catalog loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file the loader reads from
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads and parses the catalog file
func (l *Loader) Load() (*File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(l.filePath), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Parse decodes catalog yaml. Unknown keys are rejected so typos surface early.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog yaml is empty")
		}
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	return &f, nil
}

// ParseTOML decodes a catalog toml document with the same schema and strictness as Parse.
func ParseTOML(data []byte) (*File, error) {
	var f File
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog toml: %w", err)
	}
	return &f, nil
}
