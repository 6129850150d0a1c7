package storage

import (
	"context"
	"errors"
	"io"
)

// ErrUploadFailed - объектное хранилище отклонило или не завершило загрузку.
var ErrUploadFailed = errors.New("upload failed")

// ImageUpload - бинарное содержимое изображения и его метаданные.
// Size < 0 означает неизвестный размер (потоковая загрузка).
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader - контракт загрузки изображений в S3/MinIO.
type Uploader interface {
	// UploadImage сохраняет объект под уникальным ключом и возвращает его публичный URL.
	UploadImage(ctx context.Context, image ImageUpload) (publicURL string, err error)
}

// ImagesStorage - алиас-обёртка для внедрения зависимости.
type ImagesStorage interface {
	Uploader
}
