// models содержит доменные сущности profile-сервиса.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Interest - одна запись тега интереса в JSONB-массиве профиля.
type Interest struct {
	Interest string `json:"interest"`
}

// Profile - внутренняя доменная модель профиля.
// Необязательные поля хранятся как указатели: nil соответствует NULL в БД.
type Profile struct {
	ID          uuid.UUID
	Username    string
	Email       string
	Locality    *string
	FirstName   *string
	LastName    *string
	Description *string
	Interests   []Interest
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Image - запись об изображении профиля, загруженном в объектное хранилище.
type Image struct {
	ID        uuid.UUID
	Name      string
	URL       string
	ProfileID uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileView - представление профиля для выдачи наружу.
// Images == nil для диагностического списка (без изображений).
type ProfileView struct {
	Profile
	Images []string
}
