package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing was stored under the key.
var ErrNotFound = errors.New("key not found")

// Storage is the durable key-value port the cart snapshot lives in.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
