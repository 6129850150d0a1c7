package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pribylovaa/profile-service/internal/models"
	"github.com/pribylovaa/profile-service/internal/service"
)

// ProfileService - операции сервисного слоя, которые нужны хендлерам.
type ProfileService interface {
	CreateProfile(ctx context.Context, input service.CreateProfileInput) (*models.Profile, error)
	UpdateProfile(ctx context.Context, input service.UpdateProfileInput) error
	ProfileByEmail(ctx context.Context, email string) (*models.ProfileView, error)
	EmailsByInterest(ctx context.Context, interest string) ([]string, error)
	ListProfiles(ctx context.Context) ([]models.ProfileView, error)
}

// Handlers агрегирует зависимости HTTP-хендлеров.
type Handlers struct {
	Service ProfileService
	// MaxImageBytes - лимит размера изображения; тело запроса ограничивается
	// этим значением плюс запас на остальные поля формы.
	MaxImageBytes int64
}

func New(svc ProfileService, maxImageBytes int64) *Handlers {
	return &Handlers{Service: svc, MaxImageBytes: maxImageBytes}
}

// messageResponse - ответ на успешные операции записи.
type messageResponse struct {
	Message string `json:"message"`
}

// detailResponse - ответ health-проверки.
type detailResponse struct {
	Detail string `json:"detail"`
}

// writeJSON - единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// Health - проверка живости API.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, detailResponse{Detail: "Server is healthy"})
}
