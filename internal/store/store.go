// Package store provides the durable local key-value store used to survive
// process restarts. The library uses it for a single key (the lifetime income
// counter), but the contract is a generic get/set.
package store

import "context"

// Store is the durable local store contract
type Store interface {
	// Get retrieves a value; ok is false when the key is absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores a value under key
	Set(ctx context.Context, key, value string) error
}
