package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested key does not exist.
var ErrNotFound = errors.New("not found")

// Backend is the persistence interface for passvault: a prefix-addressable
// key-value store with per-key last-write-wins semantics and no cross-key
// transactions. Concurrent writers to the same key race; the write the store
// observes last wins outright.
type Backend interface {
	// Put upserts a value. ttl <= 0 means the entry never expires.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value for key, or ErrNotFound if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all live keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Lifecycle
	Close()
}
