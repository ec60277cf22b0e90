// internal/app/features/live/routes.go
package live

import (
	"github.com/go-chi/chi/v5"
	"github.com/nexera-events/symphony/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeLive)
	})

	return r
}
