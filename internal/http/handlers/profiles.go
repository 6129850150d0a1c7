package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/profile-service/internal/http/errors"
	logctx "github.com/pribylovaa/profile-service/internal/pkg/log"
	"github.com/pribylovaa/profile-service/internal/service"
)

func (h *Handlers) CreateProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		logctx.From(r.Context()).Warn("bad create form", "err", err)
		apierrors.WriteError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidArgument, err))
		return
	}

	image, closeImage, err := formImage(r)
	if err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidArgument, err))
		return
	}
	defer closeImage()

	_, err = h.Service.CreateProfile(r.Context(), service.CreateProfileInput{
		Username:    formString(r, "username"),
		Email:       formString(r, "email"),
		Locality:    formOptional(r, "locality"),
		FirstName:   formOptional(r, "first_name"),
		LastName:    formOptional(r, "last_name"),
		Description: formOptional(r, "description"),
		Image:       image,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "User Profile created successfully!"})
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.parseForm(w, r); err != nil {
		logctx.From(r.Context()).Warn("bad update form", "err", err)
		apierrors.WriteError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidArgument, err))
		return
	}

	image, closeImage, err := formImage(r)
	if err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("%w: %w", service.ErrInvalidArgument, err))
		return
	}
	defer closeImage()

	err = h.Service.UpdateProfile(r.Context(), service.UpdateProfileInput{
		Email:       email,
		Locality:    formOptional(r, "locality"),
		FirstName:   formOptional(r, "first_name"),
		LastName:    formOptional(r, "last_name"),
		Description: formOptional(r, "description"),
		Interests:   r.PostFormValue("interests"),
		Image:       image,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "User Profile updated successfully!"})
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	view, err := h.Service.ProfileByEmail(r.Context(), email)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) ListByInterest(w http.ResponseWriter, r *http.Request) {
	interest, err := pathParam(r, "interest")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	emails, err := h.Service.EmailsByInterest(r.Context(), interest)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, emails)
}

func (h *Handlers) ListAll(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.ListProfiles(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// pathParam достаёт параметр пути chi.
// chi матчит по RawPath, если он задан (в пути есть экранированные "/" или "%"-последовательности
// не в канонической форме); тогда значение приходит экранированным и его нужно декодировать.
// Иначе значение взято из уже декодированного URL.Path и повторно не декодируется.
func pathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(v)
		if err != nil {
			return "", fmt.Errorf("bad path param %q: %w", name, service.ErrInvalidArgument)
		}
		v = unescaped
	}

	if v == "" {
		return "", fmt.Errorf("empty path param %q: %w", name, service.ErrInvalidArgument)
	}
	return v, nil
}
