package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pribylovaa/profile-service/internal/models"
	"github.com/pribylovaa/profile-service/internal/storage"
)

// profileColumns - единый список колонок таблицы profiles,
// используемый в SELECT/RETURNING, чтобы гарантировать одинаковый порядок сканирования.
const profileColumns = `
id, username, email, locality, first_name, last_name, description, interests, created_at, updated_at
`

// scanProfile сканирует одну строку профиля; interests (JSONB) декодируется в []models.Interest.
func scanProfile(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile
	var interests []byte

	if err := row.Scan(
		&profile.ID,
		&profile.Username,
		&profile.Email,
		&profile.Locality,
		&profile.FirstName,
		&profile.LastName,
		&profile.Description,
		&interests,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}

	profile.Interests = []models.Interest{}
	if len(interests) > 0 {
		if err := json.Unmarshal(interests, &profile.Interests); err != nil {
			return nil, fmt.Errorf("decode interests: %w", err)
		}
	}

	return &profile, nil
}

// encodeInterests нормализует теги (TrimSpace, без пустых) и кодирует их в JSON-массив
// записей {"interest": tag}. nil/пустой вход даёт "[]".
func encodeInterests(in []models.Interest) (string, error) {
	out := make([]models.Interest, 0, len(in))
	for _, i := range in {
		tag := strings.TrimSpace(i.Interest)
		if tag == "" {
			continue
		}
		out = append(out, models.Interest{Interest: tag})
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// ProfileByEmail возвращает профиль по email.
// Ошибки: storage.ErrNotFoundProfile, либо ошибка выполнения запроса.
func (s *ProfilesStorage) ProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	const op = "storage/postgres/profiles/ProfileByEmail"

	q := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`

	result, err := scanProfile(s.q(ctx).QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFoundProfile)
		}

		return nil, wrapErr(op, err)
	}

	return result, nil
}

// CreateProfile вставляет новую запись профиля с interests = [].
// Ошибки: storage.ErrAlreadyExists при конфликте уникальности email, иные - как есть.
func (s *ProfilesStorage) CreateProfile(ctx context.Context, profile storage.NewProfile) (*models.Profile, error) {
	const op = "storage/postgres/profiles/CreateProfile"

	q := `
	INSERT INTO profiles (username, email, locality, first_name, last_name, description, interests)
	VALUES ($1, $2, $3, $4, $5, $6, '[]'::jsonb)
	RETURNING
	` + profileColumns

	row := s.q(ctx).QueryRow(ctx, q,
		profile.Username,
		profile.Email,
		profile.Locality,
		profile.FirstName,
		profile.LastName,
		profile.Description,
	)

	result, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, wrapErr(op, err)
	}

	return result, nil
}

// UpdateProfile перезаписывает locality/first_name/last_name/description (nil -> NULL)
// и целиком заменяет interests. Всегда сдвигает updated_at.
// Ошибки: storage.ErrNotFoundProfile при отсутствии записи.
func (s *ProfilesStorage) UpdateProfile(ctx context.Context, email string, update storage.ProfileUpdate) error {
	const op = "storage/postgres/profiles/UpdateProfile"

	interests, err := encodeInterests(update.Interests)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	q := `
	UPDATE profiles
	SET locality = $2,
		first_name = $3,
		last_name = $4,
		description = $5,
		interests = $6::jsonb,
		updated_at = now()
	WHERE email = $1
	`

	tag, err := s.q(ctx).Exec(ctx, q,
		email,
		update.Locality,
		update.FirstName,
		update.LastName,
		update.Description,
		interests,
	)
	if err != nil {
		return wrapErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFoundProfile)
	}

	return nil
}

// EmailsByInterest возвращает email профилей, чей массив interests содержит
// запись {"interest": interest} (JSONB @>, регистрозависимо). Сортировка по email.
func (s *ProfilesStorage) EmailsByInterest(ctx context.Context, interest string) ([]string, error) {
	const op = "storage/postgres/profiles/EmailsByInterest"

	needle, err := json.Marshal([]models.Interest{{Interest: interest}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.q(ctx).Query(ctx,
		`SELECT email FROM profiles WHERE interests @> $1::jsonb ORDER BY email`,
		string(needle),
	)
	if err != nil {
		return nil, wrapErr(op, err)
	}

	emails, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapErr(op, err)
	}

	return emails, nil
}

// ListProfiles возвращает все профили в порядке создания.
func (s *ProfilesStorage) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	const op = "storage/postgres/profiles/ListProfiles"

	rows, err := s.q(ctx).Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		profiles = append(profiles, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}

	return profiles, nil
}
