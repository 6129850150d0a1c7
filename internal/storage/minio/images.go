package minio

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/pribylovaa/profile-service/internal/storage"
)

// UploadImage загружает изображение под ключом "<uuid>_<basename>" с ACL из конфига (public-read)
// и возвращает публичный URL объекта. Проверка существования и повторы не выполняются.
func (s *ImagesStorage) UploadImage(ctx context.Context, image storage.ImageUpload) (string, error) {
	const op = "storage/minio/images/UploadImage"

	key := objectKey(image.Filename)

	size := image.Size
	if size <= 0 {
		size = -1
	}

	opts := mclient.PutObjectOptions{ContentType: image.ContentType}
	if s.cfg.ObjectACL != "" {
		opts.UserMetadata = map[string]string{"x-amz-acl": s.cfg.ObjectACL}
	}

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, image.Body, size, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s: %w: %w", op, storage.ErrTimeout, err)
		}

		return "", fmt.Errorf("%s: %w: %w", op, storage.ErrUploadFailed, err)
	}

	return s.cfg.PublicBaseURL + "/" + url.PathEscape(key), nil
}

// objectKey формирует уникальный ключ объекта из исходного имени файла.
func objectKey(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}

	return uuid.NewString() + "_" + name
}
