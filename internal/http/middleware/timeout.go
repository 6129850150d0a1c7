package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout задаёт общий дедлайн обработки запроса (Timeouts.Request) для маршрутов профилей.
// Сервисный слой ограничивает каждое обращение к БД и S3 ещё и своими таймаутами внутри
// этого дедлайна; истечение любого из них приходит как ErrTimeout и отдаётся клиенту 504.
// Уже выставленный дедлайн не переопределяется, d <= 0 отключает мидлвар.
// Служебные пробы (/livez, /healthz, /metrics) регистрируются вне этой группы.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
