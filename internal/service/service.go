// service содержит бизнес-логику profile-сервиса:
// - создание, чтение и полное обновление профиля;
// - загрузка изображения профиля в объектное хранилище;
// - поиск пользователей по тегу интереса.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pribylovaa/profile-service/internal/config"
	"github.com/pribylovaa/profile-service/internal/storage"
)

var (
	// ErrInvalidArgument - некорректные входные данные.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound - профиль не найден.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists - профиль с таким email уже существует.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUploadFailed - объектное хранилище не приняло изображение.
	ErrUploadFailed = errors.New("upload failed")
	// ErrUnavailable - зависимость недоступна.
	ErrUnavailable = errors.New("unavailable")
	// ErrTimeout - зависимость не ответила вовремя.
	ErrTimeout = errors.New("timeout")
	// ErrInternal - внутренняя ошибка сервиса.
	ErrInternal = errors.New("internal")
)

// Service - описывает бизнес-логику profile-service.
type Service struct {
	cfg             *config.Config
	profilesStorage storage.ProfilesStorage
	imagesStorage   storage.ImagesStorage
}

// New создает новый экземпляр Service.
func New(profilesStorage storage.ProfilesStorage, imagesStorage storage.ImagesStorage, cfg *config.Config) *Service {
	if cfg == nil {
		cfg = &config.Config{}
	}

	return &Service{
		profilesStorage: profilesStorage,
		imagesStorage:   imagesStorage,
		cfg:             cfg,
	}
}

// storageCtx ограничивает обращение к БД таймаутом Timeouts.Storage (0 - без ограничения).
func (s *Service) storageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, s.cfg.Timeouts.Storage)
}

// uploadCtx ограничивает загрузку в S3 таймаутом Timeouts.Upload.
func (s *Service) uploadCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, s.cfg.Timeouts.Upload)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}

// mapStorageErr переводит ошибку слоя хранилища в ошибку сервиса и пишет её в лог:
// клиентские ситуации (и отмена запроса клиентом) на уровне Warn, отказы зависимостей на уровне Error.
// Отмена возвращается как context.Canceled, чтобы HTTP-слой ответил 499.
func mapStorageErr(lg *slog.Logger, msg string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFoundProfile):
		lg.Warn("profile not found")

		return ErrNotFound
	case errors.Is(err, storage.ErrAlreadyExists):
		lg.Warn("profile already exists")

		return ErrAlreadyExists
	case errors.Is(err, storage.ErrUploadFailed):
		lg.Error(msg, "err", err)

		return ErrUploadFailed
	case errors.Is(err, storage.ErrUnavailable):
		lg.Error(msg, "err", err)

		return ErrUnavailable
	case errors.Is(err, context.Canceled):
		// Клиент ушёл раньше ответа: это не отказ зависимости.
		lg.Warn("request canceled", "err", err)

		return context.Canceled
	case errors.Is(err, storage.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		lg.Error(msg, "err", err)

		return ErrTimeout
	default:
		lg.Error(msg, "err", err)

		return ErrInternal
	}
}
