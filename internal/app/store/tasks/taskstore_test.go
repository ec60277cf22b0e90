package taskstore_test

import (
	"errors"
	"testing"
	"time"

	taskstore "github.com/nexera-events/symphony/internal/app/store/tasks"
	"github.com/nexera-events/symphony/internal/app/system/realtime"
	"github.com/nexera-events/symphony/internal/domain/models"
	"github.com/nexera-events/symphony/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_Create_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teamID := primitive.NewObjectID()
	created, err := store.Create(ctx, models.Task{
		Title:       "  Print   badges ",
		Description: `<script>alert(1)</script>Order 300`,
		TeamID:      teamID,
		Status:      models.TaskDone, // ignored on create
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Title != "Print badges" {
		t.Errorf("Title = %q", created.Title)
	}
	if created.Description != "Order 300" {
		t.Errorf("Description = %q, want script stripped", created.Description)
	}
	if created.Status != models.TaskToDo {
		t.Errorf("Status = %q, want To Do", created.Status)
	}
	if created.Priority != models.PriorityMedium {
		t.Errorf("Priority = %q, want Medium", created.Priority)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.TeamID != teamID || !got.AssigneeID.IsZero() {
		t.Errorf("refs: team %s assignee %s", got.TeamID.Hex(), got.AssigneeID.Hex())
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Task{Title: "<b></b>"}); !errors.Is(err, taskstore.ErrTitleRequired) {
		t.Errorf("err = %v, want ErrTitleRequired", err)
	}
	if _, err := store.Create(ctx, models.Task{Title: "x", Priority: "Urgent"}); !errors.Is(err, taskstore.ErrBadPriority) {
		t.Errorf("err = %v, want ErrBadPriority", err)
	}
}

func TestStore_List_CreationOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var ids []primitive.ObjectID
	for _, title := range []string{"first", "second", "third"} {
		task, err := store.Create(ctx, models.Task{Title: title})
		if err != nil {
			t.Fatalf("Create %s failed: %v", title, err)
		}
		ids = append(ids, task.ID)
		time.Sleep(2 * time.Millisecond)
	}

	tasks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("len = %d, want 3", len(tasks))
	}
	for i, id := range ids {
		if tasks[i].ID != id {
			t.Errorf("tasks[%d] = %s, want %s", i, tasks[i].Title, id.Hex())
		}
	}
}

func TestStore_Update_PreservesStatusAndCreatedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := taskstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task := fixtures.CreateTask(ctx, "Book venue", primitive.NewObjectID(), primitive.NewObjectID())
	if _, err := store.UpdateStatus(ctx, task, models.TaskInProgress); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	stored, _ := store.GetByID(ctx, task.ID)

	due := time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)
	edited := stored
	edited.Title = "Book main venue"
	edited.AssigneeID = primitive.NilObjectID
	edited.Priority = models.PriorityHigh
	edited.DueDate = &due
	edited.Status = models.TaskDone // not written by Update

	got, err := store.Update(ctx, stored, edited)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Title != "Book main venue" || got.Priority != models.PriorityHigh {
		t.Errorf("got %+v", got)
	}
	if got.Status != models.TaskInProgress {
		t.Errorf("Status = %q, want preserved In Progress", got.Status)
	}
	if !got.AssigneeID.IsZero() {
		t.Error("expected assignee cleared")
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("DueDate = %v", got.DueDate)
	}
	if !got.CreatedAt.Equal(stored.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", stored.CreatedAt, got.CreatedAt)
	}

	missing := edited
	missing.ID = primitive.NewObjectID()
	if _, err := store.Update(ctx, missing, missing); !errors.Is(err, taskstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	hub := realtime.NewHub(zap.NewNop())
	sub := hub.Subscribe(4)
	store := taskstore.New(db, hub)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task := fixtures.CreateTask(ctx, "Stack chairs", primitive.NilObjectID, primitive.NilObjectID)

	got, err := store.UpdateStatus(ctx, task, models.TaskDone)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if got.Status != models.TaskDone {
		t.Errorf("Status = %q", got.Status)
	}
	if c := <-sub; c.ID != task.ID || c.Collection != taskstore.Collection {
		t.Errorf("published %+v", c)
	}

	if _, err := store.UpdateStatus(ctx, task, "Blocked"); !errors.Is(err, taskstore.ErrBadStatus) {
		t.Errorf("err = %v, want ErrBadStatus", err)
	}
	if _, err := store.UpdateStatus(ctx, models.Task{ID: primitive.NewObjectID()}, models.TaskDone); !errors.Is(err, taskstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteAndDetach(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := taskstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	team := primitive.NewObjectID()
	user := primitive.NewObjectID()
	a := fixtures.CreateTask(ctx, "a", team, user)
	b := fixtures.CreateTask(ctx, "b", team, primitive.NilObjectID)

	if n, err := store.DetachTeam(ctx, team); err != nil || n != 2 {
		t.Errorf("DetachTeam = %d, %v; want 2", n, err)
	}
	if n, err := store.Unassign(ctx, user); err != nil || n != 1 {
		t.Errorf("Unassign = %d, %v; want 1", n, err)
	}
	got, _ := store.GetByID(ctx, a.ID)
	if !got.TeamID.IsZero() || !got.AssigneeID.IsZero() {
		t.Errorf("refs not cleared: %+v", got)
	}

	b, _ = store.GetByID(ctx, b.ID)
	if err := store.Delete(ctx, b); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, b.ID); !errors.Is(err, taskstore.ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, b); !errors.Is(err, taskstore.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

// A write authorized against one team or assignee must not land after
// another request has moved the task elsewhere.
func TestStore_StaleWritesConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := taskstore.New(db, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	teamA := primitive.NewObjectID()
	teamB := primitive.NewObjectID()
	lead := primitive.NewObjectID()
	read := fixtures.CreateTask(ctx, "Hang banners", teamA, lead)

	// Someone else moves the task to team B and unassigns it.
	moved := read
	moved.TeamID = teamB
	moved.AssigneeID = primitive.NilObjectID
	if _, err := store.Update(ctx, read, moved); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}

	stale := read
	stale.Title = "Hang banners (team A)"
	if _, err := store.Update(ctx, read, stale); !errors.Is(err, taskstore.ErrConflict) {
		t.Errorf("stale Update err = %v, want ErrConflict", err)
	}
	if _, err := store.UpdateStatus(ctx, read, models.TaskDone); !errors.Is(err, taskstore.ErrConflict) {
		t.Errorf("stale UpdateStatus err = %v, want ErrConflict", err)
	}
	if err := store.Delete(ctx, read); !errors.Is(err, taskstore.ErrConflict) {
		t.Errorf("stale Delete err = %v, want ErrConflict", err)
	}

	got, err := store.GetByID(ctx, read.ID)
	if err != nil {
		t.Fatalf("task gone after stale writes: %v", err)
	}
	if got.TeamID != teamB || !got.AssigneeID.IsZero() {
		t.Errorf("refs = team %s assignee %s, want team B and no assignee", got.TeamID.Hex(), got.AssigneeID.Hex())
	}
	if got.Title != "Hang banners" || got.Status == models.TaskDone {
		t.Errorf("stale write landed: %+v", got)
	}

	// Re-reading gives a fresh guard that matches.
	if _, err := store.UpdateStatus(ctx, got, models.TaskDone); err != nil {
		t.Errorf("UpdateStatus with fresh read: %v", err)
	}
}

func TestCountByStatus(t *testing.T) {
	counts := taskstore.CountByStatus([]models.Task{
		{Status: models.TaskToDo},
		{Status: models.TaskDone},
		{Status: models.TaskDone},
	})
	if counts[models.TaskToDo] != 1 || counts[models.TaskDone] != 2 {
		t.Errorf("counts = %v", counts)
	}
	if v, ok := counts[models.TaskInProgress]; !ok || v != 0 {
		t.Errorf("In Progress = %d (present %v), want 0 present", v, ok)
	}
}
