package service

import (
	"strings"

	"github.com/pribylovaa/profile-service/internal/models"
)

// ParseInterests разбирает строку тегов через запятую: каждый сегмент
// обрезается по пробелам, пустые сегменты отбрасываются. Порядок сохраняется.
func ParseInterests(csv string) []models.Interest {
	interests := make([]models.Interest, 0)

	for _, part := range strings.Split(csv, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}

		interests = append(interests, models.Interest{Interest: tag})
	}

	return interests
}
