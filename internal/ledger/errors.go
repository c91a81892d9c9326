package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports an operation against a record id that no longer exists.
var ErrNotFound = errors.New("record not found")

// ValidationError rejects a write before it happens, naming every offending
// field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid field(s): " + strings.Join(e.Fields, ", ")
}

// StockError reports an insufficient-stock precondition. Callers surface it as
// a recoverable warning; the operation is aborted with no partial write.
type StockError struct {
	ItemName  string
	Unit      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d %s, available %d",
		e.ItemName, e.Requested, e.Unit, e.Available)
}
