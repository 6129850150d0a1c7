// config предоставляет структуру конфигурации profile-service
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config - корневая конфигурация сервиса.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Postgres PostgresConfig `yaml:"postgres"`
	S3       S3Config       `yaml:"s3"`
	Image    ImageConfig    `yaml:"image"`
	CORS     CORSConfig     `yaml:"cors"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

// HTTPConfig - сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// PostgresConfig - подключение к БД и размеры пула.
type PostgresConfig struct {
	URL      string `yaml:"url" env:"POSTGRES" env-required:"true"`
	MaxConns int32  `yaml:"max_conns" env:"POSTGRES_MAX_CONNS" env-default:"10"`
	MinConns int32  `yaml:"min_conns" env:"POSTGRES_MIN_CONNS" env-default:"1"`
}

// S3Config - доступ к объектному хранилищу изображений.
// PublicBaseURL - префикс публичных ссылок; по умолчанию https://<bucket>.s3.amazonaws.com.
// ObjectACL передаётся заголовком x-amz-acl при загрузке; пустое значение заголовок не ставит.
type S3Config struct {
	Endpoint      string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"https://s3.amazonaws.com"`
	AccessKey     string `yaml:"access_key" env:"S3_ACCESS_KEY" env-required:"true"`
	SecretKey     string `yaml:"secret_key" env:"S3_SECRET_KEY" env-required:"true"`
	Region        string `yaml:"region" env:"S3_REGION"`
	Bucket        string `yaml:"bucket" env:"S3_BUCKET" env-required:"true"`
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
	ObjectACL     string `yaml:"object_acl" env:"S3_OBJECT_ACL" env-default:"public-read"`
	CreateBucket  bool   `yaml:"create_bucket" env:"S3_CREATE_BUCKET" env-default:"false"`
}

// ImageConfig - ограничения на загружаемые изображения профиля.
// Пустой AllowedContentTypes отключает проверку типа.
type ImageConfig struct {
	MaxSizeBytes        int64    `yaml:"max_size_bytes" env:"IMAGE_MAX_SIZE_BYTES" env-default:"10485760"`
	AllowedContentTypes []string `yaml:"allowed_content_types" env:"IMAGE_ALLOWED_CONTENT_TYPES" env-separator:"," env-default:"image/jpeg,image/png,image/webp,image/gif"`
}

// CORSConfig - разрешённые источники для браузерных клиентов.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// TracingConfig - экспорт трейсов по OTLP/HTTP. Пустой endpoint выключает экспорт.
type TracingConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"profile-service"`
}

// TimeoutConfig - таймауты сервиса.
//   - Request: общий дедлайн HTTP-запроса;
//   - Storage: одна операция с БД (или транзакция целиком);
//   - Upload: загрузка изображения в S3;
//   - Shutdown: graceful остановка HTTP-сервера.
type TimeoutConfig struct {
	Request  time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"30s"`
	Storage  time.Duration `yaml:"storage" env:"STORAGE_TIMEOUT" env-default:"5s"`
	Upload   time.Duration `yaml:"upload" env:"UPLOAD_TIMEOUT" env-default:"20s"`
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// MustLoad - обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Image.MaxSizeBytes == 0 {
		c.Image.MaxSizeBytes = 10 * 1024 * 1024 // 10 MiB
	}

	if c.Timeouts.Storage == 0 {
		c.Timeouts.Storage = 5 * time.Second
	}

	if c.Timeouts.Upload == 0 {
		c.Timeouts.Upload = 20 * time.Second
	}

	if c.Timeouts.Shutdown == 0 {
		c.Timeouts.Shutdown = 10 * time.Second
	}

	if c.Postgres.URL == "" {
		return fmt.Errorf("postgres.url is required")
	}

	if c.Postgres.MaxConns < 0 || c.Postgres.MinConns < 0 {
		return fmt.Errorf("postgres pool sizes must be >= 0")
	}

	if c.Postgres.MaxConns > 0 && c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("postgres.min_conns must not exceed postgres.max_conns")
	}

	if c.HTTP.Host == "" {
		return fmt.Errorf("http.host is required")
	}

	if p, err := strconv.Atoi(c.HTTP.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("http.port must be a valid TCP port (1..65535)")
	}

	if c.S3.Endpoint == "" {
		return fmt.Errorf("s3.endpoint is required")
	}

	if c.S3.AccessKey == "" {
		return fmt.Errorf("s3.access_key is required")
	}

	if c.S3.SecretKey == "" {
		return fmt.Errorf("s3.secret_key is required")
	}

	if c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required")
	}

	if c.S3.PublicBaseURL == "" {
		c.S3.PublicBaseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", c.S3.Bucket)
	}
	c.S3.PublicBaseURL = strings.TrimRight(c.S3.PublicBaseURL, "/")

	if c.Image.MaxSizeBytes < 0 {
		return fmt.Errorf("image.max_size_bytes must be >= 0")
	}

	if c.Timeouts.Request < 0 || c.Timeouts.Storage < 0 || c.Timeouts.Upload < 0 || c.Timeouts.Shutdown < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}

	return nil
}
