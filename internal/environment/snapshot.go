// Package environment captures process variables and an optional .env file once at startup.
package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultDotEnvFile is read from the working directory when present.
	DefaultDotEnvFile = ".env"

	assignmentSeparatorConstant = "="
	dotEnvReadFailureTemplate   = "failed to read %s: %w"
)

// Snapshot is an immutable view of environment variables.
type Snapshot struct {
	values map[string]string
}

// NewSnapshot builds a Snapshot from explicit values.
func NewSnapshot(values map[string]string) Snapshot {
	copied := make(map[string]string, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return Snapshot{values: copied}
}

// Load reads dotEnvPath without touching the process environment and overlays os.Environ on top, so process variables win.
// A missing file is not an error.
func Load(dotEnvPath string) (Snapshot, error) {
	values := make(map[string]string)
	if len(strings.TrimSpace(dotEnvPath)) > 0 {
		fileValues, readError := godotenv.Read(dotEnvPath)
		switch {
		case readError == nil:
			for key, value := range fileValues {
				values[key] = value
			}
		case errors.Is(readError, fs.ErrNotExist):
		default:
			return Snapshot{}, fmt.Errorf(dotEnvReadFailureTemplate, dotEnvPath, readError)
		}
	}

	for _, assignment := range os.Environ() {
		key, value, found := strings.Cut(assignment, assignmentSeparatorConstant)
		if !found {
			continue
		}
		values[key] = value
	}
	return Snapshot{values: values}, nil
}

// Value returns the variable's value or an empty string.
func (snapshot Snapshot) Value(name string) string {
	return snapshot.values[name]
}

// Lookup returns the variable's value and whether it was set.
func (snapshot Snapshot) Lookup(name string) (string, bool) {
	value, exists := snapshot.values[name]
	return value, exists
}
