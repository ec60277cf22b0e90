// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/go-chi/chi/v5"
	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/system/auth"
)

// Routes wires the dashboard under whatever mount point the top-level
// router chooses (e.g., "/dashboard").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequirePage(accesspolicy.PageDashboard))
		pr.Get("/", h.ServeDashboard)
	})

	return r
}
