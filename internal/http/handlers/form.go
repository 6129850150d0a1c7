package handlers

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pribylovaa/profile-service/internal/service"
)

const (
	// formOverheadBytes - запас на текстовые поля и служебные части multipart.
	formOverheadBytes = 1 << 20
	// multipartMemory - сколько multipart-данных держим в памяти, остальное во временных файлах.
	multipartMemory = 8 << 20
)

var errBadForm = errors.New("malformed form")

// parseForm разбирает multipart/form-data или application/x-www-form-urlencoded
// с ограничением размера тела.
func (h *Handlers) parseForm(w http.ResponseWriter, r *http.Request) error {
	limit := h.MaxImageBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverheadBytes)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return fmt.Errorf("%w: %w", errBadForm, err)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %w", errBadForm, err)
	}
	return nil
}

// formString возвращает trimmed-значение поля формы ("" если поля нет).
func formString(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

// formOptional возвращает nil для отсутствующего или пустого поля.
func formOptional(r *http.Request, key string) *string {
	v := formString(r, key)
	if v == "" {
		return nil
	}
	return &v
}

// formImage достаёт файл из поля "image". Пустая часть без имени файла считается отсутствующей.
// Возвращённый closer нужно вызвать после обработки.
func formImage(r *http.Request) (*service.ImageInput, func(), error) {
	noop := func() {}

	if r.MultipartForm == nil || len(r.MultipartForm.File["image"]) == 0 {
		return nil, noop, nil
	}

	fh := r.MultipartForm.File["image"][0]
	if fh.Filename == "" && fh.Size == 0 {
		return nil, noop, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("%w: %w", errBadForm, err)
	}

	return &service.ImageInput{
		Filename:    fh.Filename,
		ContentType: contentType(fh),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

// contentType берёт тип из заголовка части, а при его отсутствии определяет по содержимому.
func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}

	f, err := fh.Open()
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return http.DetectContentType(buf[:n])
}
