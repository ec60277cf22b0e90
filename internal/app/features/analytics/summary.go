// internal/app/features/analytics/summary.go
package analytics

import (
	"sort"
	"time"

	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	"github.com/nexera-events/symphony/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NoTeamLabel names the row for tasks that belong to no team.
const NoTeamLabel = "No team"

// TeamRow is one team's slice of the report.
type TeamRow struct {
	TeamID   primitive.ObjectID        `json:"team_id"`
	TeamName string                    `json:"team_name"`
	Total    int                       `json:"total"`
	ByStatus map[models.TaskStatus]int `json:"by_status"`
}

// Summary is the analytics report.
type Summary struct {
	Total      int                         `json:"total"`
	ByStatus   map[models.TaskStatus]int   `json:"by_status"`
	ByPriority map[models.TaskPriority]int `json:"by_priority"`
	Overdue    int                         `json:"overdue"`
	Unassigned int                         `json:"unassigned"`
	Teams      []TeamRow                   `json:"teams"`
}

// Summarize builds a Summary of tasks. names labels team rows; a team id
// missing from names keeps its hex id as the label. Rows are sorted by
// name with the no-team row last. A task is overdue when it has a due
// date before now and is not Done.
func Summarize(tasks []models.Task, names map[primitive.ObjectID]string, now time.Time) Summary {
	s := Summary{
		Total:      len(tasks),
		ByStatus:   taskstore.CountByStatus(tasks),
		ByPriority: map[models.TaskPriority]int{models.PriorityLow: 0, models.PriorityMedium: 0, models.PriorityHigh: 0},
		Teams:      []TeamRow{},
	}

	grouped := map[primitive.ObjectID][]models.Task{}
	for _, t := range tasks {
		s.ByPriority[t.Priority]++
		if t.AssigneeID.IsZero() {
			s.Unassigned++
		}
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != models.TaskDone {
			s.Overdue++
		}
		grouped[t.TeamID] = append(grouped[t.TeamID], t)
	}

	for teamID, list := range grouped {
		name := NoTeamLabel
		if !teamID.IsZero() {
			if n, ok := names[teamID]; ok {
				name = n
			} else {
				name = teamID.Hex()
			}
		}
		s.Teams = append(s.Teams, TeamRow{
			TeamID:   teamID,
			TeamName: name,
			Total:    len(list),
			ByStatus: taskstore.CountByStatus(list),
		})
	}
	sort.Slice(s.Teams, func(i, j int) bool {
		a, b := s.Teams[i], s.Teams[j]
		if a.TeamID.IsZero() != b.TeamID.IsZero() {
			return b.TeamID.IsZero()
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.TeamID.Hex() < b.TeamID.Hex()
	})
	return s
}
