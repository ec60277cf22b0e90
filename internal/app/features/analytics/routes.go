// internal/app/features/analytics/routes.go
package analytics

import (
	"github.com/go-chi/chi/v5"
	"github.com/nexera-events/symphony/internal/app/policy/accesspolicy"
	"github.com/nexera-events/symphony/internal/app/system/auth"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequirePage(accesspolicy.PageAnalytics))

		pr.Get("/", h.ServeSummary)
		pr.Get("/tasks.csv", h.ServeTasksCSV)
	})

	return r
}
