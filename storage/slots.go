package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Slots gives typed access to a Backend. Read-modify-write of a single
// slot is serialized inside this process; writers in other processes
// sharing the backend still win or lose the whole document.
type Slots struct {
	backend Backend

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(backend Backend) *Slots {
	return &Slots{backend: backend, locks: make(map[string]*sync.Mutex)}
}

func (s *Slots) Backend() Backend { return s.backend }

func (s *Slots) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Slots) Clear(ctx context.Context, key string) error {
	unlock := s.lock(key)
	defer unlock()
	return s.backend.Delete(ctx, key)
}

// LoadList reads a list slot. An empty slot yields a nil slice.
func LoadList[T any](ctx context.Context, s *Slots, key string) ([]T, error) {
	raw, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrSlotEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList[T](key, raw)
}

func SaveList[T any](ctx context.Context, s *Slots, key string, items []T) error {
	if err := validateList(key, items); err != nil {
		return err
	}
	unlock := s.lock(key)
	defer unlock()
	return putJSON(ctx, s.backend, key, items)
}

// UpdateList runs fn over the current contents of a list slot and
// stores what it returns, holding the slot's lock for the whole cycle.
func UpdateList[T any](ctx context.Context, s *Slots, key string, fn func([]T) ([]T, error)) error {
	unlock := s.lock(key)
	defer unlock()

	items, err := LoadList[T](ctx, s, key)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	if err := validateList(key, items); err != nil {
		return err
	}
	return putJSON(ctx, s.backend, key, items)
}

// LoadOne reads a single-object slot. An empty slot yields nil.
func LoadOne[T any](ctx context.Context, s *Slots, key string) (*T, error) {
	raw, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrSlotEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var v T
	if err := strictUnmarshal(raw, &v); err != nil {
		return nil, &CorruptSlotError{Key: key, Err: err}
	}
	if err := validate.Struct(v); err != nil {
		return nil, &CorruptSlotError{Key: key, Err: err}
	}
	return &v, nil
}

func SaveOne[T any](ctx context.Context, s *Slots, key string, v T) error {
	if err := validate.Struct(v); err != nil {
		return &InvalidItemError{Key: key, Index: -1, Err: err}
	}
	unlock := s.lock(key)
	defer unlock()
	return putJSON(ctx, s.backend, key, v)
}

func decodeList[T any](key string, raw []byte) ([]T, error) {
	var items []T
	if err := strictUnmarshal(raw, &items); err != nil {
		return nil, &CorruptSlotError{Key: key, Err: err}
	}
	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return nil, &CorruptSlotError{Key: key, Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}
	return items, nil
}

func validateList[T any](key string, items []T) error {
	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return &InvalidItemError{Key: key, Index: i, Err: err}
		}
	}
	return nil
}

func strictUnmarshal(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after document")
	}
	return nil
}

func putJSON(ctx context.Context, b Backend, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", key, err)
	}
	return b.Put(ctx, key, raw)
}
