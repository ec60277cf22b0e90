// internal/app/policy/accesspolicy/tasks.go
package accesspolicy

import (
	"github.com/nexera-events/symphony/internal/app/system/identity"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanCreateTask reports whether id may create tasks at all.
// Only people who run a team's backlog create work; volunteers consume it.
func CanCreateTask(id identity.Identity) bool {
	switch id.Role {
	case identity.RoleAdmin, identity.RoleTeamLead:
		return true
	case identity.RoleVolunteer, identity.RoleUnknown:
		return false
	}
	return false
}

// CanManageTask reports whether id may fully manage task.
//
// A nil task asks whether id may create tasks rather than whether it may
// edit a particular one, and is equivalent to CanCreateTask. New code should call CanCreateTask or CanEditTask directly.
func CanManageTask(id identity.Identity, task *models.Task) bool {
	if task == nil {
		return CanCreateTask(id)
	}
	return CanEditTask(id, *task)
}

// CanEditTask reports whether id may edit or reassign an existing task.
// Team leads manage only tasks that belong to their own team.
func CanEditTask(id identity.Identity, task models.Task) bool {
	switch id.Role {
	case identity.RoleAdmin:
		return true
	case identity.RoleTeamLead:
		return sameRef(task.TeamID, id.TeamID)
	case identity.RoleVolunteer, identity.RoleUnknown:
		return false
	}
	return false
}

// CanDeleteTask follows the edit rule.
func CanDeleteTask(id identity.Identity, task models.Task) bool {
	return CanEditTask(id, task)
}

// CanUpdateTaskStatus reports whether id may change only the status of task.
// Anyone who can edit the task can; a volunteer can also move a task that is
// assigned to them, even though they cannot edit anything else on it.
func CanUpdateTaskStatus(id identity.Identity, task models.Task) bool {
	if CanEditTask(id, task) {
		return true
	}
	return id.Role == identity.RoleVolunteer && sameRef(task.AssigneeID, id.ID)
}

// VisibleTasks returns the subsequence of all that id may see, preserving
// order. It mirrors the edit rule applied to a collection:
//
//	admin     → every task
//	team_lead → tasks owned by their team
//	volunteer → tasks assigned to them
//	otherwise → nothing
//
// The result never aliases all and is never nil.
func VisibleTasks(id identity.Identity, all []models.Task) []models.Task {
	var keep func(models.Task) bool
	switch id.Role {
	case identity.RoleAdmin:
		keep = func(models.Task) bool { return true }
	case identity.RoleTeamLead:
		keep = func(t models.Task) bool { return sameRef(t.TeamID, id.TeamID) }
	case identity.RoleVolunteer:
		keep = func(t models.Task) bool { return sameRef(t.AssigneeID, id.ID) }
	default:
		return []models.Task{}
	}

	out := make([]models.Task, 0, len(all))
	for _, t := range all {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// CanViewTask reports whether task would survive VisibleTasks for id.
func CanViewTask(id identity.Identity, task models.Task) bool {
	return len(VisibleTasks(id, []models.Task{task})) == 1
}

// sameRef reports whether two references point at the same record. An unset
// reference never matches, not even another unset one.
func sameRef(a, b primitive.ObjectID) bool {
	return !a.IsZero() && a == b
}
