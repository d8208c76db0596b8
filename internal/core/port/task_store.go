package port

import (
	"context"

	"github.com/bornholm/triage/internal/core/model"
)

// TaskStore is the persistence boundary of the task lifecycle. Every
// state-changing operation writes its matching history entry within
// the same store transaction, so a mutation and its audit record can
// not be observed separately.
type TaskStore interface {
	InsertTask(ctx context.Context, task NewTask) (model.Task, error)
	GetTaskByID(ctx context.Context, id model.TaskID) (model.Task, error)
	QueryTasks(ctx context.Context, opts QueryTasksOptions) ([]model.Task, int64, error)
	UpdateTask(ctx context.Context, id model.TaskID, updates TaskUpdates) (model.Task, error)
	DeleteTask(ctx context.Context, id model.TaskID) error

	GetTaskHistory(ctx context.Context, id model.TaskID) ([]model.TaskHistoryEntry, error)

	GetTaskStats(ctx context.Context) (*model.TaskStats, error)
}

type NewTask struct {
	Title            string
	Description      string
	AssignedTo       string
	DueDate          string
	Category         model.Category
	Priority         model.Priority
	SuggestedActions []string
	Entities         model.ExtractedEntities
	Status           model.Status
}

type QueryTasksOptions struct {
	Limit  *int
	Offset *int

	// Filters, combined with AND

	// Tasks with this exact status
	Status *model.Status

	// Tasks with this exact category
	Category *model.Category

	// Tasks with this exact priority
	Priority *model.Priority

	// Tasks whose title contains this text, case-insensitive
	TitleContains *string
}

type TaskUpdates struct {
	Title       *string
	Description *string
	AssignedTo  *string
	DueDate     *string
	Category    *model.Category
	Priority    *model.Priority
	Status      *model.Status
}
