package entity

import (
	"context"
	"io"
)

// StorageRepository stores finished backup archives in object storage.
type StorageRepository interface {
	UploadObject(ctx context.Context, obj UploadObject) error
}

// UploadObject is one object to put under Bucket/Key.
type UploadObject struct {
	Bucket      string
	Key         string
	ContentType string
	Body        io.Reader
}
