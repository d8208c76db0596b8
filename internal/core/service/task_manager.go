package service

import (
	"context"
	"strings"

	"github.com/bornholm/triage/internal/core/model"
	"github.com/bornholm/triage/internal/core/port"
	"github.com/bornholm/triage/internal/metrics"
	"github.com/pkg/errors"
)

type TaskManagerOptions struct {
	DefaultLimit  int
	DefaultOffset int
}

type TaskManagerOptionFunc func(opts *TaskManagerOptions)

func WithTaskManagerDefaultPagination(limit int, offset int) TaskManagerOptionFunc {
	return func(opts *TaskManagerOptions) {
		opts.DefaultLimit = limit
		opts.DefaultOffset = offset
	}
}

func NewTaskManagerOptions(funcs ...TaskManagerOptionFunc) *TaskManagerOptions {
	opts := &TaskManagerOptions{
		DefaultLimit:  10,
		DefaultOffset: 0,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

// TaskManager orchestrates the task lifecycle: it derives
// classification metadata on creation and relies on the task store to
// record one history entry per mutation.
type TaskManager struct {
	port.TaskStore

	classifier *Classifier

	defaultLimit  int
	defaultOffset int
}

type CreateTaskParams struct {
	Title       string
	Description string
	AssignedTo  string
	DueDate     string

	// Overrides take precedence over the classifier's verdict for
	// category and priority. Suggested actions and extracted entities
	// always reflect the unoverridden classification so that derived
	// explanatory data stays traceable to the actual text.
	Category *model.Category
	Priority *model.Priority
}

func (m *TaskManager) CreateTask(ctx context.Context, params CreateTaskParams) (model.Task, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, errors.Wrap(port.ErrInvalidTask, "title is required")
	}

	if strings.TrimSpace(params.Description) == "" {
		return nil, errors.Wrap(port.ErrInvalidTask, "description is required")
	}

	classification := m.classifier.Classify(params.Title, params.Description)

	category := classification.Category
	if params.Category != nil {
		if !params.Category.IsValid() {
			return nil, errors.Wrapf(port.ErrInvalidTask, "unknown category '%s'", *params.Category)
		}

		category = *params.Category
	}

	priority := classification.Priority
	if params.Priority != nil {
		if !params.Priority.IsValid() {
			return nil, errors.Wrapf(port.ErrInvalidTask, "unknown priority '%s'", *params.Priority)
		}

		priority = *params.Priority
	}

	task, err := m.TaskStore.InsertTask(ctx, port.NewTask{
		Title:            params.Title,
		Description:      params.Description,
		AssignedTo:       params.AssignedTo,
		DueDate:          params.DueDate,
		Category:         category,
		Priority:         priority,
		SuggestedActions: classification.SuggestedActions,
		Entities:         classification.Entities,
		Status:           model.StatusPending,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	metrics.TotalCreatedTasks.WithLabelValues(string(task.Category())).Add(1)

	return task, nil
}

// DefaultPagination returns the configured pagination defaults
// applied when a query carries no explicit limit or offset.
func (m *TaskManager) DefaultPagination() (limit int, offset int) {
	return m.defaultLimit, m.defaultOffset
}

func (m *TaskManager) QueryTasks(ctx context.Context, opts port.QueryTasksOptions) ([]model.Task, int64, error) {
	if opts.Limit == nil {
		limit := m.defaultLimit
		opts.Limit = &limit
	}

	if opts.Offset == nil {
		offset := m.defaultOffset
		opts.Offset = &offset
	}

	tasks, total, err := m.TaskStore.QueryTasks(ctx, opts)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return tasks, total, nil
}

func (m *TaskManager) GetTaskWithHistory(ctx context.Context, id model.TaskID) (model.Task, []model.TaskHistoryEntry, error) {
	task, err := m.TaskStore.GetTaskByID(ctx, id)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	history, err := m.TaskStore.GetTaskHistory(ctx, id)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	return task, history, nil
}

func (m *TaskManager) UpdateTask(ctx context.Context, id model.TaskID, updates port.TaskUpdates) (model.Task, error) {
	if updates.Category != nil && !updates.Category.IsValid() {
		return nil, errors.Wrapf(port.ErrInvalidTask, "unknown category '%s'", *updates.Category)
	}

	if updates.Priority != nil && !updates.Priority.IsValid() {
		return nil, errors.Wrapf(port.ErrInvalidTask, "unknown priority '%s'", *updates.Priority)
	}

	if updates.Status != nil && strings.TrimSpace(string(*updates.Status)) == "" {
		return nil, errors.Wrap(port.ErrInvalidTask, "status can not be empty")
	}

	task, err := m.TaskStore.UpdateTask(ctx, id, updates)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	metrics.TotalUpdatedTasks.Add(1)

	return task, nil
}

func (m *TaskManager) DeleteTask(ctx context.Context, id model.TaskID) error {
	if err := m.TaskStore.DeleteTask(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	metrics.TotalDeletedTasks.Add(1)

	return nil
}

// PreviewClassification exposes the classifier without any
// persistence side effect.
func (m *TaskManager) PreviewClassification(title string, description string) model.Classification {
	metrics.TotalClassificationPreviews.Add(1)

	return m.classifier.Classify(title, description)
}

func NewTaskManager(store port.TaskStore, classifier *Classifier, funcs ...TaskManagerOptionFunc) *TaskManager {
	opts := NewTaskManagerOptions(funcs...)

	return &TaskManager{
		TaskStore:     store,
		classifier:    classifier,
		defaultLimit:  opts.DefaultLimit,
		defaultOffset: opts.DefaultOffset,
	}
}
