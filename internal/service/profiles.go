package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/pribylovaa/profile-service/internal/models"
	"github.com/pribylovaa/profile-service/internal/pkg/log"
	"github.com/pribylovaa/profile-service/internal/storage"
)

// Входные структуры сервисного слоя.
type CreateProfileInput struct {
	Username    string
	Email       string
	Locality    *string
	FirstName   *string
	LastName    *string
	Description *string
	// Image принимается для совместимости формы и игнорируется.
	Image *ImageInput
}

type UpdateProfileInput struct {
	Email       string
	Locality    *string
	FirstName   *string
	LastName    *string
	Description *string
	// Interests - теги через запятую; заменяют текущий список целиком.
	Interests string
	// Image - новое изображение профиля (nil - изображение не меняется).
	Image *ImageInput
}

// ImageInput - загруженный клиентом файл изображения.
type ImageInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateProfile создаёт новый профиль с пустым списком интересов.
//
// Валидация:
//   - username и email нормализуются (TrimSpace) и не должны быть пустыми.
//
// Поведение:
//   - если профиль с таким email уже есть, возвращает ErrAlreadyExists;
//   - проигранная гонка на UNIQUE-ограничении также даёт ErrAlreadyExists;
//   - ошибки стораджа маппятся в ErrUnavailable / ErrTimeout / ErrInternal.
func (s *Service) CreateProfile(ctx context.Context, input CreateProfileInput) (*models.Profile, error) {
	const op = "service/profiles/CreateProfile"

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	lg := log.From(ctx).With("op", op, "email", input.Email)

	if input.Username == "" {
		lg.Warn("invalid argument: empty username")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if input.Email == "" {
		lg.Warn("invalid argument: empty email")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if input.Image != nil {
		lg.Debug("image on create is ignored", "filename", input.Image.Filename)
	}

	sctx, cancel := s.storageCtx(ctx)
	defer cancel()

	_, err := s.profilesStorage.ProfileByEmail(sctx, input.Email)
	switch {
	case err == nil:
		lg.Warn("profile already exists")

		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	case !isNotFound(err):
		return nil, fmt.Errorf("%s: %w", op, mapStorageErr(lg, "storage error on ProfileByEmail", err))
	}

	result, err := s.profilesStorage.CreateProfile(sctx, storage.NewProfile{
		Username:    input.Username,
		Email:       input.Email,
		Locality:    input.Locality,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Description: input.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapStorageErr(lg, "storage error on CreateProfile", err))
	}

	lg.Info("profile created", "profile_id", result.ID.String())

	return result, nil
}

// UpdateProfile полностью перезаписывает изменяемые поля профиля и, при наличии,
// его изображение.
//
// Порядок:
//   - профиль ищется по email (нет - ErrNotFound);
//   - интересы разбираются из CSV (ParseInterests);
//   - изображение валидируется по размеру и типу (ErrInvalidArgument)
//     и загружается в S3 до любых записей в БД;
//   - апдейт профиля и запись изображения (update при наличии строк, иначе insert)
//     выполняются одной транзакцией.
//
// Загруженный объект при ошибке транзакции остаётся в бакете (пишется в лог).
func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) error {
	const op = "service/profiles/UpdateProfile"

	input.Email = strings.TrimSpace(input.Email)
	lg := log.From(ctx).With("op", op, "email", input.Email)

	if input.Email == "" {
		lg.Warn("invalid argument: empty email")

		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	lookupCtx, cancel := s.storageCtx(ctx)
	profile, err := s.profilesStorage.ProfileByEmail(lookupCtx, input.Email)
	cancel()
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapStorageErr(lg, "storage error on ProfileByEmail", err))
	}

	lg = lg.With("profile_id", profile.ID.String())

	if input.Image != nil {
		if err := s.validateImage(input.Image); err != nil {
			lg.Warn("invalid image", "filename", input.Image.Filename, "content_type", input.Image.ContentType, "size", input.Image.Size, "err", err)

			return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
	}

	update := storage.ProfileUpdate{
		Locality:    input.Locality,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Description: input.Description,
		Interests:   ParseInterests(input.Interests),
	}

	var imageURL string
	if input.Image != nil {
		uctx, cancel := s.uploadCtx(ctx)
		imageURL, err = s.imagesStorage.UploadImage(uctx, storage.ImageUpload{
			Filename:    input.Image.Filename,
			ContentType: mediaType(input.Image.ContentType),
			Size:        input.Image.Size,
			Body:        input.Image.Body,
		})
		cancel()
		if err != nil {
			return fmt.Errorf("%s: %w", op, mapStorageErr(lg, "image upload failed", err))
		}

		lg.Debug("image uploaded", "url", imageURL)
	}

	txCtx, cancel := s.storageCtx(ctx)
	defer cancel()

	err = s.profilesStorage.WithinTx(txCtx, func(ctx context.Context) error {
		// UpdateProfile идёт первым: он блокирует строку профиля до конца транзакции,
		// так что конкурентный апдейт увидит уже вставленную запись изображения.
		if err := s.profilesStorage.UpdateProfile(ctx, input.Email, update); err != nil {
			return err
		}

		if input.Image == nil {
			return nil
		}

		images, err := s.profilesStorage.ImagesByProfile(ctx, profile.ID)
		if err != nil {
			return err
		}

		if len(images) > 0 {
			_, err = s.profilesStorage.UpdateImage(ctx, input.Image.Filename, imageURL, profile.ID)
			return err
		}

		return s.profilesStorage.InsertImage(ctx, input.Image.Filename, imageURL, profile.ID)
	})
	if err != nil {
		if imageURL != "" {
			lg.Warn("uploaded image left without database record", "url", imageURL)
		}

		return fmt.Errorf("%s: %w", op, mapStorageErr(lg, "storage error on UpdateProfile", err))
	}

	lg.Info("profile updated", "interests", len(update.Interests), "image", imageURL != "")

	return nil
}

// ProfileByEmail возвращает профиль вместе с URL его изображений.
func (s *Service) ProfileByEmail(ctx context.Context, email string) (*models.ProfileView, error) {
	const op = "service/profiles/ProfileByEmail"

	email = strings.TrimSpace(email)
	lg := log.From(ctx).With("op", op, "email", email)

	if email == "" {
		lg.Warn("invalid argument: empty email")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	sctx, cancel := s.storageCtx(ctx)
	defer cancel()

	profile, err := s.profilesStorage.ProfileByEmail(sctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapStorageErr(lg, "storage error on ProfileByEmail", err))
	}

	images, err := s.profilesStorage.ImagesByProfile(sctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapStorageErr(lg, "storage error on ImagesByProfile", err))
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}

	return &models.ProfileView{Profile: *profile, Images: urls}, nil
}

// EmailsByInterest возвращает email пользователей, у которых есть тег interest.
// Совпадение точное и регистрозависимое. Пустой после TrimSpace тег не может
// храниться в профиле (ParseInterests его отбрасывает), поэтому ответ - пустой список.
func (s *Service) EmailsByInterest(ctx context.Context, interest string) ([]string, error) {
	const op = "service/profiles/EmailsByInterest"

	interest = strings.TrimSpace(interest)
	lg := log.From(ctx).With("op", op, "interest", interest)

	if interest == "" {
		lg.Debug("blank interest, nothing to match")

		return []string{}, nil
	}

	sctx, cancel := s.storageCtx(ctx)
	defer cancel()

	emails, err := s.profilesStorage.EmailsByInterest(sctx, interest)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapStorageErr(lg, "storage error on EmailsByInterest", err))
	}

	if emails == nil {
		emails = []string{}
	}

	return emails, nil
}

// ListProfiles возвращает все профили без изображений (диагностика).
func (s *Service) ListProfiles(ctx context.Context) ([]models.ProfileView, error) {
	const op = "service/profiles/ListProfiles"

	lg := log.From(ctx).With("op", op)

	sctx, cancel := s.storageCtx(ctx)
	defer cancel()

	profiles, err := s.profilesStorage.ListProfiles(sctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapStorageErr(lg, "storage error on ListProfiles", err))
	}

	views := make([]models.ProfileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, models.ProfileView{Profile: p})
	}

	return views, nil
}

// validateImage проверяет размер и тип изображения по конфигу.
func (s *Service) validateImage(img *ImageInput) error {
	if img.Body == nil {
		return fmt.Errorf("empty body")
	}

	if img.Size == 0 {
		return fmt.Errorf("empty file")
	}

	if limit := s.cfg.Image.MaxSizeBytes; limit > 0 && img.Size > limit {
		return fmt.Errorf("size %d exceeds limit %d", img.Size, limit)
	}

	allowed := s.cfg.Image.AllowedContentTypes
	if len(allowed) == 0 {
		return nil
	}

	ct := mediaType(img.ContentType)
	for _, a := range allowed {
		if strings.EqualFold(a, ct) {
			return nil
		}
	}

	return fmt.Errorf("content type %q is not allowed", img.ContentType)
}

// mediaType отбрасывает параметры Content-Type ("image/png; q=1" -> "image/png").
func mediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}

	return strings.ToLower(strings.TrimSpace(contentType))
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFoundProfile)
}
