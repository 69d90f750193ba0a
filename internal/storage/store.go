// Package storage provides the key-value slots the profile is persisted in.
package storage

import (
	"context"
	"errors"
	"regexp"
)

var (
	// ErrNotFound is returned when a slot has never been written.
	ErrNotFound = errors.New("slot not found")
	// ErrInvalidKey is returned for slot names that are empty or unsafe as file names.
	ErrInvalidKey = errors.New("invalid slot key")
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Store reads and overwrites named slots. Values are opaque bytes; decoding and
// validation belong to the caller.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Watcher is implemented by stores that can report out-of-band changes to a slot.
type Watcher interface {
	Watch(ctx context.Context, key string, onChange func([]byte)) error
}

func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	return nil
}
