// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/nexera-events/symphony/internal/app/store/audit"
)

// PageSize is the number of events per page.
const PageSize = 50

// listItem is one audit event with actor and target names resolved.
type listItem struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	EventType  string            `json:"event_type"`
	ActorID    string            `json:"actor_id,omitempty"`
	ActorName  string            `json:"actor_name,omitempty"`
	TargetID   string            `json:"target_id,omitempty"`
	TargetName string            `json:"target_name,omitempty"`
	IP         string            `json:"ip"`
	Success    bool              `json:"success"`
	Reason     string            `json:"failure_reason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Events     []listItem `json:"events"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Total      int64      `json:"total"`
	Categories []string   `json:"categories"`
	EventTypes []string   `json:"event_types"`
}

var authEvents = []string{
	audit.EventLoginSuccess,
	audit.EventLoginFailedUserNotFound,
	audit.EventLoginFailedWrongPassword,
	audit.EventLoginFailedUserDisabled,
	audit.EventLoginFailedRateLimit,
	audit.EventLogout,
}

var adminEvents = []string{
	audit.EventUserCreated,
	audit.EventUserUpdated,
	audit.EventTeamCreated,
	audit.EventTeamUpdated,
	audit.EventTeamDeleted,
	audit.EventTaskCreated,
	audit.EventTaskUpdated,
	audit.EventTaskStatusChange,
	audit.EventTaskDeleted,
	audit.EventEventCreated,
	audit.EventEventUpdated,
	audit.EventEventDeleted,
	audit.EventSponsorCreated,
	audit.EventSponsorUpdated,
	audit.EventSponsorDeleted,
	audit.EventLogisticsCreated,
	audit.EventLogisticsUpdated,
	audit.EventLogisticsDeleted,
}

var securityEvents = []string{audit.EventPermissionDenied}

// eventTypesForCategory returns the event types for a category, or every
// type when category is empty. An unknown category has none.
func eventTypesForCategory(category string) []string {
	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case audit.CategorySecurity:
		return securityEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents)+len(securityEvents))
		all = append(all, authEvents...)
		all = append(all, adminEvents...)
		return append(all, securityEvents...)
	}
	return nil
}
