// Package metadata is a small key-value repository over the client's local
// sqlite database. The session layer uses it to persist the session marker
// across program runs.
package metadata

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
