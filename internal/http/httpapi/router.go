package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"docgen/internal/http/handlers"
	"docgen/internal/infra"
	"docgen/internal/middleware"
)

func NewRouter(app *handlers.App, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/requests", func(r chi.Router) {
		r.Post("/", app.SubmitRequest)
		r.Get("/{id}", app.GetRequest)
		r.Post("/{id}/cancel", app.CancelRequest)
	})
	r.Route("/v1/batches", func(r chi.Router) {
		r.Post("/", app.SubmitBatch)
		r.Get("/{id}", app.BatchProgress)
		r.Get("/{id}/requests", app.ListBatchRequests)
	})

	return r
}
