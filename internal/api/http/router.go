package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	platformhealth "github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/platform/health/http"
)

// NewRouter создаёт и настраивает HTTP роутер для Inventory Service
// readiness - функция для проверки готовности сервиса (например, ping БД).
// Если readiness возвращает false, health endpoint вернёт 503 Service Unavailable.
func NewRouter(handler *Handler, readiness func() bool) chi.Router {
	router := chi.NewRouter()

	router.Route("/products", func(r chi.Router) {
		r.Get("/", handler.GetProducts)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			handler.GetProductByID(w, r, chi.URLParam(r, "id"))
		})
		r.Patch("/{id}", func(w http.ResponseWriter, r *http.Request) {
			handler.UpdateProductStock(w, r, chi.URLParam(r, "id"))
		})
	})

	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
