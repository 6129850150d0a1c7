package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/profile-service/internal/config"
	"github.com/pribylovaa/profile-service/internal/storage"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты для пакета minio:
// - поднимают реальный MinIO через testcontainers-go;
// - проверяют:
//    New: ошибку при отсутствии бакета и его создание при create_bucket;
//    UploadImage: запись объекта с content-type, формат ключа и публичного URL;
//    поведение при истёкшем контексте (ErrTimeout).
//
// Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/minio -v -race -count=1

const (
	rootUser     = "root"
	rootPassword = "rootpass"
	bucket       = "images"
)

type minioEnv struct {
	endpoint string
	admin    *mclient.Client
}

func startMinio(t *testing.T) (*minioEnv, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	const image = "docker.io/minio/minio:latest"
	req := tc.ContainerRequest{
		Image: image,
		Env: map[string]string{
			"MINIO_ROOT_USER":     rootUser,
			"MINIO_ROOT_PASSWORD": rootPassword,
		},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	t.Logf("starting minio container with image=%q", image)
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "9000/tcp")

	admin, err := mclient.New(host+":"+port.Port(), &mclient.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: false,
	})
	require.NoError(t, err)

	env := &minioEnv{
		endpoint: fmt.Sprintf("http://%s:%s", host, port.Port()),
		admin:    admin,
	}
	cleanup := func() {
		_ = c.Terminate(context.Background())
	}
	return env, cleanup
}

func s3Config(endpoint string) config.S3Config {
	return config.S3Config{
		Endpoint:      endpoint,
		AccessKey:     rootUser,
		SecretKey:     rootPassword,
		Region:        "us-east-1",
		Bucket:        bucket,
		PublicBaseURL: "http://cdn.local",
	}
}

func TestIntegration_New_BucketMustExist(t *testing.T) {
	env, cleanup := startMinio(t)
	defer cleanup()

	_, err := New(context.Background(), s3Config(env.endpoint))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestIntegration_New_CreateBucket_OK(t *testing.T) {
	env, cleanup := startMinio(t)
	defer cleanup()

	cfg := s3Config(env.endpoint)
	cfg.CreateBucket = true

	_, err := New(context.Background(), cfg)
	require.NoError(t, err)

	exists, err := env.admin.BucketExists(context.Background(), bucket)
	require.NoError(t, err)
	require.True(t, exists)

	// Повторный старт с уже существующим бакетом.
	_, err = New(context.Background(), cfg)
	require.NoError(t, err)
}

func TestIntegration_New_EndpointWithoutScheme_OK(t *testing.T) {
	env, cleanup := startMinio(t)
	defer cleanup()
	require.NoError(t, env.admin.MakeBucket(context.Background(), bucket, mclient.MakeBucketOptions{}))

	u, err := url.Parse(env.endpoint)
	require.NoError(t, err)

	_, err = New(context.Background(), s3Config(u.Host))
	require.NoError(t, err)
}

func TestIntegration_UploadImage_OK(t *testing.T) {
	env, cleanup := startMinio(t)
	defer cleanup()
	require.NoError(t, env.admin.MakeBucket(context.Background(), bucket, mclient.MakeBucketOptions{}))

	cfg := s3Config(env.endpoint)
	// MinIO не поддерживает объектные ACL.
	cfg.ObjectACL = ""
	st, err := New(context.Background(), cfg)
	require.NoError(t, err)

	body := []byte("\x89PNG fake image")
	publicURL, err := st.UploadImage(context.Background(), storage.ImageUpload{
		Filename:    "../photos/me.png",
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(publicURL, "http://cdn.local/"))
	require.True(t, strings.HasSuffix(publicURL, "_me.png"))

	key := strings.TrimPrefix(publicURL, "http://cdn.local/")
	info, err := env.admin.StatObject(context.Background(), bucket, key, mclient.StatObjectOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(len(body)), info.Size)
	require.Equal(t, "image/png", info.ContentType)

	obj, err := env.admin.GetObject(context.Background(), bucket, key, mclient.GetObjectOptions{})
	require.NoError(t, err)
	got, err := io.ReadAll(obj)
	require.NoError(t, err)
	require.Equal(t, body, got)
}

func TestIntegration_UploadImage_SameFilename_NewKeys(t *testing.T) {
	env, cleanup := startMinio(t)
	defer cleanup()
	require.NoError(t, env.admin.MakeBucket(context.Background(), bucket, mclient.MakeBucketOptions{}))

	cfg := s3Config(env.endpoint)
	cfg.ObjectACL = ""
	st, err := New(context.Background(), cfg)
	require.NoError(t, err)

	upload := func() string {
		u, err := st.UploadImage(context.Background(), storage.ImageUpload{
			Filename: "a.jpg", ContentType: "image/jpeg", Size: -1, Body: strings.NewReader("jpeg"),
		})
		require.NoError(t, err)
		return u
	}

	require.NotEqual(t, upload(), upload(), "каждая загрузка создаёт новый объект")
}

func TestIntegration_UploadImage_ContextDeadlineExceeded(t *testing.T) {
	env, cleanup := startMinio(t)
	defer cleanup()
	require.NoError(t, env.admin.MakeBucket(context.Background(), bucket, mclient.MakeBucketOptions{}))

	cfg := s3Config(env.endpoint)
	cfg.ObjectACL = ""
	st, err := New(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	_, err = st.UploadImage(ctx, storage.ImageUpload{
		Filename: "a.png", ContentType: "image/png", Size: 1, Body: bytes.NewReader([]byte{1}),
	})
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrTimeout)
}

func TestObjectKey(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"me.png":             "_me.png",
		"dir/sub/cat.jpg":    "_cat.jpg",
		`C:\Users\x\dog.gif`: "_dog.gif",
		"":                   "_image",
		"/":                  "_image",
	}

	for in, suffix := range cases {
		key := objectKey(in)
		require.True(t, strings.HasSuffix(key, suffix), "key %q for %q", key, in)
		require.Len(t, key, 36+len(suffix))
	}
}
