package service

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	gormAdapter "github.com/bornholm/triage/internal/adapter/gorm"
	"github.com/bornholm/triage/internal/core/model"
	"github.com/bornholm/triage/internal/core/port"
	"github.com/ncruces/go-sqlite3/gormlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	_ "github.com/ncruces/go-sqlite3/embed"
)

func newTestTaskManager(t *testing.T, funcs ...TaskManagerOptionFunc) *TaskManager {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tasks.sqlite")

	db, err := gorm.Open(gormlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return NewTaskManager(gormAdapter.NewTaskStore(db), NewClassifier(), funcs...)
}

func TestTaskManagerCreate(t *testing.T) {
	ctx := context.Background()
	manager := newTestTaskManager(t)

	task, err := manager.CreateTask(ctx, CreateTaskParams{
		Title:       "Fix the backup job",
		Description: "It fails with an error since 2024-05-02, urgent",
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if task.ID() == "" {
		t.Errorf("task.ID() should not be empty")
	}

	if e, g := model.CategoryTechnical, task.Category(); e != g {
		t.Errorf("task.Category(): expected '%v', got '%v'", e, g)
	}

	if e, g := model.PriorityHigh, task.Priority(); e != g {
		t.Errorf("task.Priority(): expected '%v', got '%v'", e, g)
	}

	if e, g := model.StatusPending, task.Status(); e != g {
		t.Errorf("task.Status(): expected '%v', got '%v'", e, g)
	}

	if e, g := []string{"2024-05-02"}, task.Entities().Dates; !reflect.DeepEqual(e, g) {
		t.Errorf("task.Entities().Dates: expected '%v', got '%v'", e, g)
	}

	if task.CreatedAt().IsZero() {
		t.Errorf("task.CreatedAt() should not be zero value")
	}

	_, history, err := manager.GetTaskWithHistory(ctx, task.ID())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 1, len(history); e != g {
		t.Fatalf("len(history): expected '%d', got '%v'", e, g)
	}

	if e, g := model.HistoryActionCreated, history[0].Action(); e != g {
		t.Errorf("history[0].Action(): expected '%v', got '%v'", e, g)
	}

	if history[0].OldValue() != nil {
		t.Errorf("history[0].OldValue() should be absent for a creation")
	}

	if newValue := history[0].NewValue(); newValue == nil || newValue.ID != task.ID() {
		t.Errorf("history[0].NewValue() should snapshot the created task")
	}
}

func TestTaskManagerCreateValidation(t *testing.T) {
	ctx := context.Background()
	manager := newTestTaskManager(t)

	_, err := manager.CreateTask(ctx, CreateTaskParams{
		Title: "No description",
	})
	if !errors.Is(err, port.ErrInvalidTask) {
		t.Errorf("err: expected port.ErrInvalidTask, got '%+v'", err)
	}

	_, err = manager.CreateTask(ctx, CreateTaskParams{
		Description: "No title",
	})
	if !errors.Is(err, port.ErrInvalidTask) {
		t.Errorf("err: expected port.ErrInvalidTask, got '%+v'", err)
	}

	unknown := model.Category("gardening")

	_, err = manager.CreateTask(ctx, CreateTaskParams{
		Title:       "Trim the hedge",
		Description: "front yard",
		Category:    &unknown,
	})
	if !errors.Is(err, port.ErrInvalidTask) {
		t.Errorf("err: expected port.ErrInvalidTask, got '%+v'", err)
	}
}

func TestTaskManagerCreateWithOverrides(t *testing.T) {
	ctx := context.Background()
	manager := newTestTaskManager(t)

	override := model.CategoryFinance

	task, err := manager.CreateTask(ctx, CreateTaskParams{
		Title:       "Feed the office plants",
		Description: "They look a bit dry",
		Category:    &override,
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := model.CategoryFinance, task.Category(); e != g {
		t.Errorf("task.Category(): expected '%v', got '%v'", e, g)
	}

	// Suggested actions and entities keep reflecting the unoverridden
	// classification of the text
	unoverridden := NewClassifier().Classify("Feed the office plants", "They look a bit dry")

	if e, g := unoverridden.SuggestedActions, task.SuggestedActions(); !reflect.DeepEqual(e, g) {
		t.Errorf("task.SuggestedActions(): expected '%v', got '%v'", e, g)
	}

	if e, g := unoverridden.Entities, task.Entities(); !reflect.DeepEqual(e, g) {
		t.Errorf("task.Entities(): expected '%v', got '%v'", e, g)
	}
}

func TestTaskManagerUpdate(t *testing.T) {
	ctx := context.Background()
	manager := newTestTaskManager(t)

	task, err := manager.CreateTask(ctx, CreateTaskParams{
		Title:       "Inspect the scaffolding",
		Description: "Safety check of the east wing",
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	before := model.SnapshotOf(task)

	status := model.StatusInProgress

	updated, err := manager.UpdateTask(ctx, task.ID(), port.TaskUpdates{
		Status: &status,
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := model.StatusInProgress, updated.Status(); e != g {
		t.Errorf("updated.Status(): expected '%v', got '%v'", e, g)
	}

	_, history, err := manager.GetTaskWithHistory(ctx, task.ID())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 2, len(history); e != g {
		t.Fatalf("len(history): expected '%d', got '%v'", e, g)
	}

	// Newest first
	if e, g := model.HistoryActionStatusChanged, history[0].Action(); e != g {
		t.Errorf("history[0].Action(): expected '%v', got '%v'", e, g)
	}

	oldValue := history[0].OldValue()
	if oldValue == nil {
		t.Fatalf("history[0].OldValue() should not be absent")
	}

	if e, g := before.Status, oldValue.Status; e != g {
		t.Errorf("oldValue.Status: expected '%v', got '%v'", e, g)
	}

	if e, g := before.Title, oldValue.Title; e != g {
		t.Errorf("oldValue.Title: expected '%v', got '%v'", e, g)
	}

	title := "Inspect the scaffolding again"

	if _, err := manager.UpdateTask(ctx, task.ID(), port.TaskUpdates{Title: &title}); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	_, history, err = manager.GetTaskWithHistory(ctx, task.ID())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := model.HistoryActionUpdated, history[0].Action(); e != g {
		t.Errorf("history[0].Action(): expected '%v', got '%v'", e, g)
	}
}

func TestTaskManagerUpdateNotFound(t *testing.T) {
	ctx := context.Background()
	manager := newTestTaskManager(t)

	status := model.StatusCompleted

	_, err := manager.UpdateTask(ctx, model.NewTaskID(), port.TaskUpdates{Status: &status})
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("err: expected port.ErrNotFound, got '%+v'", err)
	}
}

func TestTaskManagerDelete(t *testing.T) {
	ctx := context.Background()
	manager := newTestTaskManager(t)

	task, err := manager.CreateTask(ctx, CreateTaskParams{
		Title:       "Pay the caterer invoice",
		Description: "Before the end of the month",
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if err := manager.DeleteTask(ctx, task.ID()); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	_, _, err = manager.GetTaskWithHistory(ctx, task.ID())
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("err: expected port.ErrNotFound, got '%+v'", err)
	}

	// The audit trail outlives the task
	history, err := manager.TaskStore.GetTaskHistory(ctx, task.ID())
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 2, len(history); e != g {
		t.Fatalf("len(history): expected '%d', got '%v'", e, g)
	}

	if e, g := model.HistoryActionDeleted, history[0].Action(); e != g {
		t.Errorf("history[0].Action(): expected '%v', got '%v'", e, g)
	}

	if history[0].NewValue() != nil {
		t.Errorf("history[0].NewValue() should be absent for a deletion")
	}

	if err := manager.DeleteTask(ctx, task.ID()); !errors.Is(err, port.ErrNotFound) {
		t.Errorf("err: expected port.ErrNotFound, got '%+v'", err)
	}
}

func TestTaskManagerPagination(t *testing.T) {
	ctx := context.Background()
	manager := newTestTaskManager(t, WithTaskManagerDefaultPagination(3, 0))

	titles := []string{"First", "Second", "Third", "Fourth", "Fifth"}
	for _, title := range titles {
		if _, err := manager.CreateTask(ctx, CreateTaskParams{Title: title, Description: "some work"}); err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}
	}

	all, total, err := manager.QueryTasks(ctx, port.QueryTasksOptions{Limit: intRef(10)})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := int64(5), total; e != g {
		t.Errorf("total: expected '%d', got '%v'", e, g)
	}

	// Newest first
	if e, g := "Fifth", all[0].Title(); e != g {
		t.Errorf("all[0].Title(): expected '%v', got '%v'", e, g)
	}

	firstPage, _, err := manager.QueryTasks(ctx, port.QueryTasksOptions{Limit: intRef(2), Offset: intRef(0)})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	secondPage, total, err := manager.QueryTasks(ctx, port.QueryTasksOptions{Limit: intRef(2), Offset: intRef(2)})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := int64(5), total; e != g {
		t.Errorf("total: expected '%d', got '%v' (total ignores pagination)", e, g)
	}

	paged := append(firstPage, secondPage...)

	if e, g := 4, len(paged); e != g {
		t.Fatalf("len(paged): expected '%d', got '%v'", e, g)
	}

	for i, task := range paged {
		if e, g := all[i].ID(), task.ID(); e != g {
			t.Errorf("paged[%d].ID(): expected '%v', got '%v'", i, e, g)
		}
	}

	// Default pagination comes from the configured options
	defaultPage, _, err := manager.QueryTasks(ctx, port.QueryTasksOptions{})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 3, len(defaultPage); e != g {
		t.Errorf("len(defaultPage): expected '%d', got '%v'", e, g)
	}
}

func TestTaskManagerPreviewClassification(t *testing.T) {
	ctx := context.Background()
	manager := newTestTaskManager(t)

	result := manager.PreviewClassification("Schedule a call", "with the vendor asap")

	if e, g := model.CategoryScheduling, result.Category; e != g {
		t.Errorf("result.Category: expected '%v', got '%v'", e, g)
	}

	if e, g := model.PriorityHigh, result.Priority; e != g {
		t.Errorf("result.Priority: expected '%v', got '%v'", e, g)
	}

	// No persistence side effect
	_, total, err := manager.QueryTasks(ctx, port.QueryTasksOptions{})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := int64(0), total; e != g {
		t.Errorf("total: expected '%d', got '%v'", e, g)
	}
}

func intRef(v int) *int {
	return &v
}
