package kv

import "context"

// Store is the persistent key-value capability the tracker runs on. Values are
// opaque strings; there are no transactions, no locking and no retries. Callers
// own read-modify-write consistency.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}
