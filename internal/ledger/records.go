package ledger

import (
	"context"
	"encoding/json"

	"shopledger/backend/internal/kv"
)

// Storage keys. Each collection is one JSON array under one key; saves are
// full-array overwrites, never partial patches.
const (
	keyInventory     = "inventory"
	keySales         = "sales"
	keyPurchases     = "purchases"
	keyCredits       = "credits"
	keySelectedScope = "selected_database"
)

func loadCollection[T any](ctx context.Context, store kv.Store, key string) ([]T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, &kv.StorageError{Op: "get", Key: key, Err: err}
	}
	if !ok || raw == "" {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, &kv.StorageError{Op: "decode", Key: key, Err: err}
	}
	return records, nil
}

func saveCollection[T any](ctx context.Context, store kv.Store, key string, records []T) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return &kv.StorageError{Op: "encode", Key: key, Err: err}
	}
	if err := store.Set(ctx, key, string(payload)); err != nil {
		return &kv.StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// filterScope keeps records tagged with the active scope. Records with no
// scope tag predate scoping and stay visible everywhere.
func filterScope[T any](records []T, scope string, scopeOf func(T) string) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		tag := scopeOf(r)
		if tag == "" || tag == scope {
			out = append(out, r)
		}
	}
	return out
}
