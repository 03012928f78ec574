// Package kvstore defines the persistence substrate for the local document
// store: a flat key–value space holding one serialized blob per key.
//
// Implementations must distinguish "key absent" (a normal result) from an
// actual storage fault; only the latter is reported as an error.
package kvstore

import "context"

// Store is the minimal persistence boundary the document engine needs.
type Store interface {
	// Get returns the value stored under key. The boolean return value
	// reports whether the key was present; an absent key is not an error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set inserts or replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}
