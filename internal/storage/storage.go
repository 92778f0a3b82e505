// Package storage defines the blob store used for uploaded images.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"
)

// Custom metadata keys attached to every uploaded object.
const (
	MetaUploaderEmail   = "uploaderEmail"
	MetaUploadTimestamp = "uploadTimestamp"
	MetaRemarks         = "remarks"
	MetaTelegramUserID  = "telegramUserId"
)

// PutOptions carries the content type and provenance metadata for a write.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Provider is the blob store contract. Objects are append-only: every upload
// creates a new object and nothing mutates one after creation.
type Provider interface {
	Put(ctx context.Context, key string, body io.Reader, opts PutOptions) error
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Head(ctx context.Context, key string) (ObjectInfo, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// TelegramUploadKey derives the object name for a bot upload from the upload
// time in milliseconds. Collisions are accepted as a non-goal: names race
// only when two uploads land in the same millisecond.
func TelegramUploadKey(ts time.Time) string {
	return fmt.Sprintf("images/telegram_%d.jpg", ts.UnixMilli())
}

// WebUploadKey derives the object name for a browser upload.
func WebUploadKey(ts time.Time, filename string) string {
	return fmt.Sprintf("images/web_%d_%s", ts.UnixMilli(), path.Base(filename))
}
