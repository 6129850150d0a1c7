package models

import "encoding/json"

// profileJSON - формат ответа HTTP API. Имена полей совместимы с существующими клиентами.
type profileJSON struct {
	UserID      string     `json:"user_id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Locality    *string    `json:"locality"`
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	Description *string    `json:"description"`
	Interests   []Interest `json:"interests"`
	Image       []string   `json:"image,omitempty"`
}

// MarshalJSON сериализует представление; interests всегда массив, даже пустой.
func (v ProfileView) MarshalJSON() ([]byte, error) {
	interests := v.Interests
	if interests == nil {
		interests = []Interest{}
	}

	out := profileJSON{
		UserID:      v.ID.String(),
		Username:    v.Username,
		Email:       v.Email,
		Locality:    v.Locality,
		FirstName:   v.FirstName,
		LastName:    v.LastName,
		Description: v.Description,
		Interests:   interests,
		Image:       v.Images,
	}

	// Для профиля с images != nil поле "image" выводим даже пустым.
	if v.Images != nil {
		return json.Marshal(struct {
			profileJSON
			Image []string `json:"image"`
		}{profileJSON: out, Image: v.Images})
	}

	return json.Marshal(out)
}
