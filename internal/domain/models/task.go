// internal/domain/models/task.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStatus is the closed set of task states.
type TaskStatus string

const (
	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskDone       TaskStatus = "Done"
)

// TaskStatuses lists every status in board order.
var TaskStatuses = []TaskStatus{TaskToDo, TaskInProgress, TaskDone}

// ParseTaskStatus accepts the display form ("In Progress") or a
// snake/kebab form ("in_progress", "in-progress").
func ParseTaskStatus(s string) (TaskStatus, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("_", " ", "-", " ").Replace(k)
	switch k {
	case "to do", "todo":
		return TaskToDo, true
	case "in progress":
		return TaskInProgress, true
	case "done":
		return TaskDone, true
	default:
		return "", false
	}
}

// TaskPriority is the closed set of task priorities.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// ParseTaskPriority is case-insensitive.
func ParseTaskPriority(s string) (TaskPriority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	default:
		return "", false
	}
}

// Task is a unit of work owned by a team and optionally assigned to one user.
//
// AssigneeID and TeamID are NilObjectID when unset. The access policy treats
// an unset reference as matching nobody.
type Task struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	AssigneeID  primitive.ObjectID `bson:"assignee_id,omitempty" json:"assignee_id"`
	TeamID      primitive.ObjectID `bson:"team_id,omitempty" json:"team_id"`
	Status      TaskStatus         `bson:"status" json:"status"`
	Priority    TaskPriority       `bson:"priority" json:"priority"`
	DueDate     *time.Time         `bson:"due_date,omitempty" json:"due_date,omitempty"`

	CreatedBy primitive.ObjectID `bson:"created_by,omitempty" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
