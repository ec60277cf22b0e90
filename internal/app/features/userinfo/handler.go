// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	shared "github.com/nexera-events/symphony/internal/app/features/shared/views"
	"github.com/nexera-events/symphony/internal/app/system/auth"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
)

// Handler serves the session check the client makes on load.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type response struct {
	Authenticated bool           `json:"authenticated"`
	Viewer        *shared.Viewer `json:"viewer,omitempty"`
}

// ServeUserInfo handles GET /me. It always answers 200; a signed-out
// caller gets authenticated=false and no viewer.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	id := auth.CurrentIdentity(r)
	if !id.Present() {
		jsonutil.Write(w, http.StatusOK, response{})
		return
	}
	v := shared.ViewerFor(id)
	jsonutil.Write(w, http.StatusOK, response{Authenticated: true, Viewer: &v})
}
