package kv

import "fmt"

// StorageError wraps a failed store call. The ledger logs and rethrows these;
// nothing in the core retries or rolls back.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
