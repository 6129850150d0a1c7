// storage содержит контракты слоя хранилищ profile-service.
//
// profiles.go - работа с профилями и записями изображений в БД, транзакции.
// images.go - контракт загрузки изображений в S3/MinIO.
package storage

//go:generate mockgen -destination=../../mocks/profiles_storage.go -package=mocks github.com/pribylovaa/profile-service/internal/storage ProfilesStorage
//go:generate mockgen -destination=../../mocks/images_storage.go -package=mocks github.com/pribylovaa/profile-service/internal/storage ImagesStorage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pribylovaa/profile-service/internal/models"
)

var (
	// ErrNotFoundProfile - профиль не найден.
	ErrNotFoundProfile = errors.New("not found")
	// ErrAlreadyExists - нарушено ограничение уникальности (email).
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnavailable - зависимость недоступна (нет соединения).
	ErrUnavailable = errors.New("unavailable")
	// ErrTimeout - истёк дедлайн обращения к зависимости.
	ErrTimeout = errors.New("timeout")
)

// NewProfile - данные для вставки нового профиля. Interests всегда пустой.
type NewProfile struct {
	Username    string
	Email       string
	Locality    *string
	FirstName   *string
	LastName    *string
	Description *string
}

// ProfileUpdate - полная замена изменяемых полей профиля.
// nil-указатель записывается как NULL, а не пропускается; Interests заменяются целиком.
type ProfileUpdate struct {
	Locality    *string
	FirstName   *string
	LastName    *string
	Description *string
	Interests   []models.Interest
}

// Profiles - контракт репозитория профилей.
type Profiles interface {
	// ProfileByEmail возвращает профиль по точному совпадению email.
	ProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	// CreateProfile вставляет профиль с пустым списком интересов.
	CreateProfile(ctx context.Context, profile NewProfile) (*models.Profile, error)
	// UpdateProfile перезаписывает изменяемые поля профиля с данным email.
	UpdateProfile(ctx context.Context, email string, update ProfileUpdate) error
	// EmailsByInterest возвращает email всех профилей, содержащих тег interest.
	EmailsByInterest(ctx context.Context, interest string) ([]string, error)
	// ListProfiles возвращает все профили (диагностика).
	ListProfiles(ctx context.Context) ([]models.Profile, error)
}

// Images - контракт записей изображений профиля.
type Images interface {
	// ImagesByProfile возвращает все записи изображений профиля.
	ImagesByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Image, error)
	// InsertImage добавляет новую запись изображения.
	InsertImage(ctx context.Context, name, url string, profileID uuid.UUID) error
	// UpdateImage перезаписывает name/url во всех записях профиля, возвращает число строк.
	UpdateImage(ctx context.Context, name, url string, profileID uuid.UUID) (int64, error)
}

// Transactor - выполнение набора операций одной транзакцией.
// Контекст, переданный в fn, несёт транзакцию; вложенные вызовы её переиспользуют.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProfilesStorage - верхнеуровневый интерфейс хранилища профилей.
type ProfilesStorage interface {
	Profiles
	Images
	Transactor
	Close()
}
