package pix

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lembretes/pix-service/pkg/observability"
)

// NewRouter mounts the Pix API.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Route("/v1/pix", func(r chi.Router) {
		r.Post("/qrcode", handler.createCharge)
		r.Post("/refund", handler.refund)
		r.Post("/validate-key", handler.validateKey)
		r.Post("/webhook", handler.receiveWebhook)
	})
	return r
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		observability.ObserveHTTPRequest(route, ww.Status(), time.Since(start))
	})
}
