// Package storage stores brief response documents in an S3-compatible object store.
// Objects are streamed; nothing is written to local disk.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// PutObjectOptions describe an upload. Size is -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object store used for brief response documents.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
}

// DocumentKey builds the object key of a supplier's document for a brief:
// {framework}/documents/brief-{id}/supplier-{code}/{slug}.
func DocumentKey(frameworkSlug string, briefID, supplierCode int64, slug string) string {
	return fmt.Sprintf("%s/documents/brief-%d/supplier-%d/%s", frameworkSlug, briefID, supplierCode, slug)
}
