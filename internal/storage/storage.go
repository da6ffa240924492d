package storage

import (
	"context"
	"io"
)

// Store: sipariş eklerinin saklandığı yer.
// Delete, olmayan bir nesne için nil döner.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
