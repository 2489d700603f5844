package storage

import (
	"context"
	"io"
)

// UploadResult описывает сохранённый объект.
type UploadResult struct {
	Key      string
	Location string // публичный URL
	ETag     string
}

// FileUploader хранит эмблемы турниров во внешнем объектном хранилище.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
