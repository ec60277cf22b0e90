// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/nexera-events/symphony/internal/app/store/audit"
	"github.com/nexera-events/symphony/internal/app/system/authz"
	"github.com/nexera-events/symphony/internal/app/system/jsonutil"
	"github.com/nexera-events/symphony/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var categories = []string{audit.CategoryAuth, audit.CategoryAdmin, audit.CategorySecurity}

// ServeList handles GET /audit. Admins only. Filters: category,
// event_type, user_id (actor or target), start_date and end_date
// (YYYY-MM-DD, inclusive), page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.UserCtx(r)
	if !ok {
		authz.Unauthorized(w)
		return
	}
	if !authz.IsAdmin(r) {
		authz.Deny(w, r, h.AuditLog, "audit.list", "")
		return
	}

	category := query.Get(r, "category")
	if category != "" && eventTypesForCategory(category) == nil {
		h.ErrLog.LogBadRequest(w, r, "audit list: bad category", nil, "Unknown category.")
		return
	}
	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category:  category,
		EventType: query.Get(r, "event_type"),
		Limit:     PageSize,
		Offset:    int64((page - 1) * PageSize),
	}
	if raw := query.Get(r, "user_id"); raw != "" {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "audit list: bad user_id", err, "Invalid user_id.")
			return
		}
		filter.UserID = &oid
	}
	if raw := query.Get(r, "start_date"); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			filter.StartTime = &t
		}
	}
	if raw := query.Get(r, "end_date"); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			end := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &end
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit list: query", err, "")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit list: count", err, "")
		return
	}

	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, ref := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if ref == nil {
				continue
			}
			if _, dup := seen[*ref]; !dup {
				seen[*ref] = struct{}{}
				ids = append(ids, *ref)
			}
		}
	}
	names, err := h.Users.Names(ctx, ids)
	if err != nil {
		// Rows fall back to hex ids.
		h.Log.Warn("audit list: name lookup failed", zap.Error(err), zap.String("user_id", id.ID.Hex()))
		names = map[primitive.ObjectID]string{}
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:        e.ID.Hex(),
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		}
		if e.ActorID != nil {
			item.ActorID = e.ActorID.Hex()
			item.ActorName = nameOr(names, *e.ActorID)
		}
		if e.UserID != nil {
			item.TargetID = e.UserID.Hex()
			item.TargetName = nameOr(names, *e.UserID)
		}
		items = append(items, item)
	}

	totalPages := int((total + PageSize - 1) / PageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	jsonutil.Write(w, http.StatusOK, listResponse{
		Events:     items,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Categories: categories,
		EventTypes: eventTypesForCategory(category),
	})
}

func nameOr(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id.Hex()
}
