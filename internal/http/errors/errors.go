// errors стандартизирует ответы об ошибках HTTP-слоя profile-service.
// На вход принимает ошибку сервисного слоя, на выход даёт:
//   - корректный HTTP-статус;
//   - фиксированную фразу detail и машиночитаемый code без утечки деталей.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/profile-service/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrorResponse - единый формат тела ошибки.
// Detail - фиксированная человекочитаемая фраза (совместима с существующими клиентами).
// Code - короткий стабильный код для машинной обработки.
// RequestID - прокидывается из X-Request-Id, если есть.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и тело ответа.
//
//   - ErrInvalidArgument -> 400 "Invalid argument"
//   - ErrAlreadyExists -> 400 "User already exists"
//   - ErrNotFound -> 404 "User not found"
//   - ErrUploadFailed -> 502 "Image upload failed"
//   - ErrUnavailable -> 503 "Service unavailable"
//   - ErrTimeout, context.DeadlineExceeded -> 504 "Dependency timeout"
//   - context.Canceled -> 499 (клиент закрыл соединение)
//   - прочее и nil -> 500 "Internal Server Error"
func ToHTTP(err error) (int, ErrorResponse) {
	switch {
	case err == nil:
		return internal()
	case stderrors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, ErrorResponse{Detail: "Invalid argument", Code: "invalid_argument"}
	case stderrors.Is(err, service.ErrAlreadyExists):
		return http.StatusBadRequest, ErrorResponse{Detail: "User already exists", Code: "already_exists"}
	case stderrors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Detail: "User not found", Code: "not_found"}
	case stderrors.Is(err, service.ErrUploadFailed):
		return http.StatusBadGateway, ErrorResponse{Detail: "Image upload failed", Code: "upload_failed"}
	case stderrors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{Detail: "Service unavailable", Code: "unavailable"}
	case stderrors.Is(err, service.ErrTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Detail: "Dependency timeout", Code: "deadline_exceeded"}
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, ErrorResponse{Detail: "Request canceled", Code: "canceled"}
	default:
		return internal()
	}
}

func internal() (int, ErrorResponse) {
	return http.StatusInternalServerError, ErrorResponse{Detail: "Internal Server Error", Code: "internal"}
}

// WriteError - хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
