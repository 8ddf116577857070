package store

import (
	"context"
	"errors"
)

type Store interface {
	SnipeStore
	CounterStore
	Init(ctx context.Context) error
	Close(ctx context.Context) error
}

// Common errors
var (
	ErrInternal      = errors.New("internal error")
	ErrSnipeNotFound = errors.New("snipe not found")
	ErrEditNotFound  = errors.New("edit not found")
)
