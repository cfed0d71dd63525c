// Package publish uploads a built site to S3-compatible object storage.
package publish

import (
	"context"
	"io"
)

// PutObjectOptions describe one upload. Size is -1 when unknown.
type PutObjectOptions struct {
	Size         int64
	ContentType  string
	CacheControl string
}

// Storage is the subset of an object store the publisher needs.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) error
}
