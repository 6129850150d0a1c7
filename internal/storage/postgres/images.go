package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/profile-service/internal/models"
)

// ImagesByProfile возвращает записи изображений профиля в порядке создания.
func (s *ProfilesStorage) ImagesByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Image, error) {
	const op = "storage/postgres/images/ImagesByProfile"

	rows, err := s.q(ctx).Query(ctx, `
	SELECT id, image_name, image_url, profile_id, created_at, updated_at
	FROM images
	WHERE profile_id = $1
	ORDER BY created_at, id
	`, profileID)
	if err != nil {
		return nil, wrapErr(op, err)
	}

	images, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Image, error) {
		var img models.Image
		err := row.Scan(&img.ID, &img.Name, &img.URL, &img.ProfileID, &img.CreatedAt, &img.UpdatedAt)
		return img, err
	})
	if err != nil {
		return nil, wrapErr(op, err)
	}

	return images, nil
}

// InsertImage добавляет запись изображения профиля.
func (s *ProfilesStorage) InsertImage(ctx context.Context, name, url string, profileID uuid.UUID) error {
	const op = "storage/postgres/images/InsertImage"

	_, err := s.q(ctx).Exec(ctx,
		`INSERT INTO images (image_name, image_url, profile_id) VALUES ($1, $2, $3)`,
		name, url, profileID,
	)
	if err != nil {
		return wrapErr(op, err)
	}

	return nil
}

// UpdateImage перезаписывает name/url во всех записях профиля.
// Возвращает число затронутых строк; 0 - записей нет (не ошибка).
func (s *ProfilesStorage) UpdateImage(ctx context.Context, name, url string, profileID uuid.UUID) (int64, error) {
	const op = "storage/postgres/images/UpdateImage"

	tag, err := s.q(ctx).Exec(ctx, `
	UPDATE images
	SET image_name = $1, image_url = $2, updated_at = now()
	WHERE profile_id = $3
	`, name, url, profileID)
	if err != nil {
		return 0, wrapErr(op, err)
	}

	return tag.RowsAffected(), nil
}
