// Package storage provides the durable key-value store used by the local backend.
package storage

import "errors"

// Common errors.
var (
	ErrNotFound   = errors.New("key not found")
	ErrClosed     = errors.New("store closed")
	ErrInvalidKey = errors.New("invalid key")
)

// KV is a byte-oriented key-value store scoped to this client.
type KV interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist.
	Get(key string) ([]byte, error)

	// Set stores a value, replacing any previous one.
	Set(key string, value []byte) error

	// Close releases the store.
	Close() error
}

// ValidateKey checks if a key is usable.
func ValidateKey(key string) error {
	if key == "" || len(key) > 1024 {
		return ErrInvalidKey
	}
	return nil
}
