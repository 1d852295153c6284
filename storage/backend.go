package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrSlotEmpty   = errors.New("storage: slot is empty")
	ErrCorruptSlot = errors.New("storage: corrupt slot")
	ErrInvalidItem = errors.New("storage: invalid item")
)

// Backend persists raw slot documents. Get returns ErrSlotEmpty for a
// slot that was never written or has been deleted.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// CorruptSlotError reports a slot whose document failed to decode or
// did not match the expected schema.
type CorruptSlotError struct {
	Key string
	Err error
}

func (e *CorruptSlotError) Error() string {
	return fmt.Sprintf("storage: slot %q is corrupt: %v", e.Key, e.Err)
}

func (e *CorruptSlotError) Unwrap() error { return e.Err }

func (e *CorruptSlotError) Is(target error) bool { return target == ErrCorruptSlot }

// InvalidItemError reports a write refused because an item does not
// match the slot schema. The slot is left as it was.
type InvalidItemError struct {
	Key   string
	Index int
	Err   error
}

func (e *InvalidItemError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("storage: invalid value for slot %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("storage: invalid item %d for slot %q: %v", e.Index, e.Key, e.Err)
}

func (e *InvalidItemError) Unwrap() error { return e.Err }

func (e *InvalidItemError) Is(target error) bool { return target == ErrInvalidItem }
