package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"atelier/internal/store"
	"atelier/internal/testsupport"
	"atelier/internal/workflow"
)

func newTask(itemID int64, stage workflow.Stage, name string, order int) *workflow.Task {
	now := time.Now().UTC()
	return &workflow.Task{
		ID:        uuid.NewString(),
		ItemID:    itemID,
		Stage:     stage,
		Name:      name,
		Mandatory: true,
		Order:     order,
		Status:    workflow.TaskNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOpenIsIdempotentAcrossRestarts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewItem(t, st, "saree_blouse")
	path := st.Path()
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.Path() != path {
		t.Fatalf("path changed across restarts: %s != %s", reopened.Path(), path)
	}
	got, err := reopened.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || got.GarmentType != "saree_blouse" {
		t.Fatalf("item did not survive reopen: %#v", got)
	}
}

func TestNewItemStartsAtIntake(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	due := time.Now().Add(48 * time.Hour).UTC()
	item, err := st.NewItem(context.Background(), "ORD-77", "lehenga", 2, due)
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected a row id")
	}
	if item.CurrentStage != workflow.StageIntake {
		t.Fatalf("expected intake, got %s", item.CurrentStage)
	}
	if item.Status != workflow.ItemNotStarted {
		t.Fatalf("expected not_started, got %s", item.Status)
	}
}

func TestGetItemMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	item, err := st.GetItem(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil for missing item, got %#v", item)
	}
}

func TestSetItemStageAndStatusMissingItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	err := st.SetItemStageAndStatus(context.Background(), 42, workflow.StageCutting, workflow.ItemInProgress)
	if !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveTaskUpserts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	item := testsupport.NewItem(t, st, "saree_blouse")

	task := newTask(item.ID, workflow.StageIntake, "Record measurements", 1)
	if err := st.SaveTask(ctx, task); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}

	task.Notes = "taken at counter"
	task.Status = workflow.TaskInProgress
	if err := st.SaveTask(ctx, task); err != nil {
		t.Fatalf("SaveTask update: %v", err)
	}

	got, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Notes != "taken at counter" || got.Status != workflow.TaskInProgress {
		t.Fatalf("upsert lost fields: %#v", got)
	}
	all, err := st.TasksForItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("TasksForItem: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("upsert duplicated row: %d tasks", len(all))
	}
}

func TestSaveTaskTransitionDetectsConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	item := testsupport.NewItem(t, st, "saree_blouse")

	task := newTask(item.ID, workflow.StageIntake, "Record measurements", 1)
	if err := st.SaveTask(ctx, task); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}

	task.Status = workflow.TaskInProgress
	if err := st.SaveTaskTransition(ctx, task, workflow.TaskNotStarted); err != nil {
		t.Fatalf("SaveTaskTransition: %v", err)
	}

	// Stale writer: claims the row is still not_started when it has moved on.
	task.Status = workflow.TaskCompleted
	err := st.SaveTaskTransition(ctx, task, workflow.TaskNotStarted)
	if !errors.Is(err, workflow.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Status != workflow.TaskInProgress {
		t.Fatalf("conflicting write mutated the row: %s", got.Status)
	}
}

func TestFindTaskByPrefix(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	item := testsupport.NewItem(t, st, "saree_blouse")

	task := newTask(item.ID, workflow.StageIntake, "Record measurements", 1)
	if err := st.SaveTask(ctx, task); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}

	byFull, err := st.FindTaskByPrefix(ctx, task.ID)
	if err != nil {
		t.Fatalf("FindTaskByPrefix full id: %v", err)
	}
	if byFull.ID != task.ID {
		t.Fatalf("wrong task: %s", byFull.ID)
	}

	byPrefix, err := st.FindTaskByPrefix(ctx, task.ID[:8])
	if err != nil {
		t.Fatalf("FindTaskByPrefix: %v", err)
	}
	if byPrefix.ID != task.ID {
		t.Fatalf("wrong task for prefix: %s", byPrefix.ID)
	}

	missing, err := st.FindTaskByPrefix(ctx, "zzzzzzzz")
	if err != nil {
		t.Fatalf("FindTaskByPrefix missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown prefix, got %#v", missing)
	}

	second := newTask(item.ID, workflow.StageIntake, "Confirm design", 2)
	second.ID = task.ID[:8] + "-sibling-with-shared-prefix"
	if err := st.SaveTask(ctx, second); err != nil {
		t.Fatalf("SaveTask sibling: %v", err)
	}
	if _, err := st.FindTaskByPrefix(ctx, task.ID[:8]); err == nil {
		t.Fatal("expected ambiguity error for shared prefix")
	}
}

func TestTasksForItemStageOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	item := testsupport.NewItem(t, st, "saree_blouse")

	names := []string{"first", "second", "third"}
	for i := len(names) - 1; i >= 0; i-- {
		if err := st.SaveTask(ctx, newTask(item.ID, workflow.StageCutting, names[i], i+1)); err != nil {
			t.Fatalf("SaveTask: %v", err)
		}
	}
	if err := st.SaveTask(ctx, newTask(item.ID, workflow.StageIntake, "other stage", 1)); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}

	tasks, err := st.TasksForItemStage(ctx, item.ID, workflow.StageCutting)
	if err != nil {
		t.Fatalf("TasksForItemStage: %v", err)
	}
	if len(tasks) != len(names) {
		t.Fatalf("expected %d tasks, got %d", len(names), len(tasks))
	}
	for i, task := range tasks {
		if task.Name != names[i] {
			t.Fatalf("position %d: expected %q, got %q", i, names[i], task.Name)
		}
	}
}

func TestTimelineKeepsInsertionOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	item := testsupport.NewItem(t, st, "saree_blouse")

	stages := []workflow.Stage{workflow.StageIntake, workflow.StageMaterials, workflow.StageMarking}
	base := time.Now().UTC()
	for i, stage := range stages {
		entry := workflow.TimelineEntry{
			Stage:   stage,
			Action:  workflow.TimelineActionCompleted,
			StaffID: "S9",
			// Identical wall-clock times must not reorder entries.
			At: base,
		}
		if err := st.AppendTimeline(ctx, item.ID, entry); err != nil {
			t.Fatalf("AppendTimeline %d: %v", i, err)
		}
	}

	entries, err := st.Timeline(ctx, item.ID)
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if len(entries) != len(stages) {
		t.Fatalf("expected %d entries, got %d", len(stages), len(entries))
	}
	for i, entry := range entries {
		if entry.Stage != stages[i] {
			t.Fatalf("position %d: expected %s, got %s", i, stages[i], entry.Stage)
		}
	}
}

func TestListItemsFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.NewItem(t, st, "saree_blouse")
	b := testsupport.NewItem(t, st, "chudidhar")
	if err := st.SetItemStageAndStatus(ctx, b.ID, workflow.StageCompleted, workflow.ItemCompleted); err != nil {
		t.Fatalf("SetItemStageAndStatus: %v", err)
	}

	open, err := st.ListItems(ctx, workflow.ItemNotStarted, workflow.ItemInProgress)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(open) != 1 || open[0].ID != a.ID {
		t.Fatalf("expected only the open item, got %d rows", len(open))
	}

	all, err := st.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
}

func TestItemStatsCountsByStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewItem(t, st, "saree_blouse")
	testsupport.NewItem(t, st, "saree_blouse")
	c := testsupport.NewItem(t, st, "lehenga")
	if err := st.SetItemStageAndStatus(ctx, c.ID, workflow.StageCutting, workflow.ItemInProgress); err != nil {
		t.Fatalf("SetItemStageAndStatus: %v", err)
	}

	stats, err := st.ItemStats(ctx)
	if err != nil {
		t.Fatalf("ItemStats: %v", err)
	}
	if stats[workflow.StageIntake] != 2 || stats[workflow.StageCutting] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestRemoveItemCascadesToTasks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	item := testsupport.NewItem(t, st, "saree_blouse")

	task := newTask(item.ID, workflow.StageIntake, "Record measurements", 1)
	if err := st.SaveTask(ctx, task); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}

	removed, err := st.RemoveItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if !removed {
		t.Fatal("expected removal to report true")
	}
	gone, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask after removal: %v", err)
	}
	if gone != nil {
		t.Fatalf("expected cascaded task delete, got %#v", gone)
	}

	removed, err = st.RemoveItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("RemoveItem again: %v", err)
	}
	if removed {
		t.Fatal("second removal should report false")
	}
}

func TestTaskAssignmentRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	item := testsupport.NewItem(t, st, "saree_blouse")

	now := time.Now().UTC().Truncate(time.Second)
	task := newTask(item.ID, workflow.StageStitching, "Stitch body", 1)
	task.AssignedStaffID = "S1"
	task.AssignedStaffName = "Meena"
	task.AssignedAt = &now
	if err := st.SaveTask(ctx, task); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}

	got, err := st.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.AssignedStaffID != "S1" || got.AssignedStaffName != "Meena" {
		t.Fatalf("assignment fields lost: %#v", got)
	}
	if got.AssignedAt == nil || !got.AssignedAt.Equal(now) {
		t.Fatalf("AssignedAt mismatch: %v", got.AssignedAt)
	}
	if got.Stage != workflow.StageStitching {
		t.Fatalf("stage mismatch: %s", got.Stage)
	}
}
