package ledger

import "fmt"

// ValidationError rejects bad input before anything is written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Reason }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError means the referenced lot does not exist.
type NotFoundError struct {
	LotID int64
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("lot %d not found", e.LotID) }

// InsufficientStockError carries the quantity actually available so the
// caller can retry with a corrected amount.
type InsufficientStockError struct {
	LotID     int64
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("lot %d: requested %d units, only %d on hand", e.LotID, e.Requested, e.Available)
}

// StorageError wraps a persistence failure. Never fatal: callers show the
// message and let the user retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// WrapStorage is used by Store implementations to tag driver errors.
func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
