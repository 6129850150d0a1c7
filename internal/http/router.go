package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pribylovaa/profile-service/internal/http/handlers"
	"github.com/pribylovaa/profile-service/internal/http/middleware"
)

// Options - параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// AllowedOrigins - источники для CORS; пустой список отключает CORS-мидлвар.
	AllowedOrigins []string
	// MaxImageBytes - лимит размера изображения в форме.
	MaxImageBytes int64
	// Metrics - HTTP-метрики (nil - без метрик).
	Metrics *middleware.HTTPMetrics
	// MetricsHandler отдаёт /metrics (обычно promhttp.Handler()).
	MetricsHandler http.Handler
	// Ready - проверка готовности для /healthz (nil - всегда готов).
	Ready func(ctx context.Context) error
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc handlers.ProfileService, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(opts.Metrics),
	)

	if len(opts.AllowedOrigins) > 0 {
		root.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Служебные пробы без общего дедлайна.
	registerProbes(root, opts)

	h := handlers.New(svc, opts.MaxImageBytes)

	root.Group(func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
		}
		registerRoutes(r, h)
	})

	return otelhttp.NewHandler(root, "profile-service")
}

// registerRoutes - единая точка регистрации REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/health", h.Health)
	r.Get("/health/", h.Health)

	r.Post("/profile", h.CreateProfile)
	r.Post("/profile/", h.CreateProfile)

	// Статические пути регистрируются вместе с {email}; chi отдаёт им приоритет.
	r.Get("/profile/all", h.ListAll)
	r.Get("/profile/all/", h.ListAll)
	r.Get("/profile/users/{interest}", h.ListByInterest)

	r.Get("/profile/{email}", h.GetProfile)
	r.Put("/profile/{email}", h.UpdateProfile)
}

func registerProbes(r chi.Router, opts Options) {
	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := opts.Ready(ctx); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}
}
