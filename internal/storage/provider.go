// Package storage is the durable slice store: the sole boundary between
// in-memory application state and persistence. Each key holds one
// independently serialized slice of state.
package storage

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/starford/pulse/internal/apperr"
)

// Provider is the key-value contract implemented by each backend.
type Provider interface {
	// Read returns the raw bytes stored under key, or apperr.ErrNotFound.
	Read(key string) ([]byte, error)
	// Write atomically replaces the value stored under key.
	Write(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Close releases backend resources.
	Close() error
}

// IsNotFound reports whether err means the key is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}

// ReadJSON reads and decodes the slice under key. It never fails: an
// absent key, a read error, or corrupt JSON all yield the fallback.
// Failures other than absence are logged.
func ReadJSON[T any](p Provider, key string, fallback T) T {
	raw, err := p.Read(key)
	if err != nil {
		if !IsNotFound(err) {
			slog.Warn("storage: read failed, using fallback",
				slog.String("key", key), slog.String("error", err.Error()))
		}
		return fallback
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Warn("storage: corrupt slice, using fallback",
			slog.String("key", key), slog.String("error", err.Error()))
		return fallback
	}
	return v
}

// WriteJSON encodes v and stores it under key. It returns false on any
// failure so callers can treat persistence as best-effort and keep
// operating on the in-memory state.
func WriteJSON(p Provider, key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Error("storage: encode failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if err := p.Write(key, raw); err != nil {
		slog.Error("storage: write failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	return true
}
