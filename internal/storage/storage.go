// Package storage keeps task attachments in an S3-compatible object store.
package storage

import (
	"context"
	"io"
	"time"
)

type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage streams objects in and out; nothing touches local disk.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// URL returns a link clients can fetch the object from.
	URL(ctx context.Context, key string) (string, error)
}
