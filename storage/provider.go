package storage

import (
	"context"
	"errors"
	"fmt"
)

// Store is the interface for every key-value backend.
// Values are persisted as JSON; keys live in a single flat namespace.
type Store interface {
	// Get decodes the value stored under key into dst.
	// found is false (and err nil) when the key was never written or was removed.
	Get(ctx context.Context, key string, dst any) (found bool, err error)

	// Set replaces the value stored under key. The previous value stays
	// intact when encoding or the write fails.
	Set(ctx context.Context, key string, value any) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys lists every stored key in lexical order.
	Keys(ctx context.Context) ([]string, error)
}

// ErrStorage matches every *Error returned by a Store.
var ErrStorage = errors.New("storage error")

// Error describes a failed storage operation.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrStorage as a match so callers can test with errors.Is.
func (e *Error) Is(target error) bool {
	return target == ErrStorage
}

// Wrap returns nil for a nil err, otherwise an *Error for op on key.
func Wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Key: key, Err: err}
}
