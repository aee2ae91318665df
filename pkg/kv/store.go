// Package kv provides the string key-value storage every higher level store persists through.
package kv

import "context"

// Store is a persistent string key-value store.
// No atomicity is guaranteed across keys.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
