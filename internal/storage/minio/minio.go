// minio предоставляет реализацию storage.ImagesStorage на базе MinIO/S3.
// minio.go - конструктор клиента MinIO: нормализует endpoint,
// настраивает Secure/creds/region и проверяет наличие целевого бакета.
// images.go - загрузка изображений профиля и сборка публичного URL.
package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/profile-service/internal/config"
	"github.com/pribylovaa/profile-service/internal/storage"
)

// ImagesStorage - адаптер MinIO для загрузки изображений профиля.
type ImagesStorage struct {
	cfg    config.S3Config
	client *mclient.Client
}

// New создает и инициализирует клиент MinIO.
// Убирает схему из endpoint, подбирает Secure по схеме и выполняет
// fail-fast-проверку бакета. При S3.CreateBucket отсутствующий бакет создаётся.
func New(ctx context.Context, cfg config.S3Config) (*ImagesStorage, error) {
	const op = "storage/minio/New"

	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		if !cfg.CreateBucket {
			return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
		}

		if err := client.MakeBucket(ctx, cfg.Bucket, mclient.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("%s: make bucket %q: %w", op, cfg.Bucket, err)
		}
	}

	return &ImagesStorage{cfg: cfg, client: client}, nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.ImagesStorage = (*ImagesStorage)(nil)
