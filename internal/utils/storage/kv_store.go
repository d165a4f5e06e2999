// Package storage holds the key-value persistence providers the cart is saved through.
// Values are opaque strings (JSON documents in practice).
package storage

import (
	"context"
	"errors"
)

var ErrEmptyKey = errors.New("storage key must not be empty")

type KVStore interface {
	// Get returns the value stored at key. found is false when nothing is stored there.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
}
