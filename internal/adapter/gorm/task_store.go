package gorm

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bornholm/triage/internal/core/model"
	"github.com/bornholm/triage/internal/core/port"
	"github.com/ncruces/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type TaskStore struct {
	getDatabase func(ctx context.Context) (*gorm.DB, error)
}

// InsertTask implements port.TaskStore.
func (s *TaskStore) InsertTask(ctx context.Context, newTask port.NewTask) (model.Task, error) {
	var task *Task

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		task = fromNewTask(newTask)

		if res := db.Create(task); res.Error != nil {
			return errors.WithStack(res.Error)
		}

		entry := newHistoryEntry(task.ID, model.HistoryActionCreated, nil, model.SnapshotOf(&wrappedTask{task}))

		if res := db.Create(entry); res.Error != nil {
			return errors.WithStack(res.Error)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedTask{task}, nil
}

// GetTaskByID implements port.TaskStore.
func (s *TaskStore) GetTaskByID(ctx context.Context, id model.TaskID) (model.Task, error) {
	var task Task

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.First(&task, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}

			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedTask{&task}, nil
}

// QueryTasks implements port.TaskStore.
func (s *TaskStore) QueryTasks(ctx context.Context, opts port.QueryTasksOptions) ([]model.Task, int64, error) {
	var (
		tasks []*Task
		total int64
	)

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		limit := 10
		if opts.Limit != nil {
			limit = *opts.Limit
		}

		offset := 0
		if opts.Offset != nil {
			offset = *opts.Offset
		}

		filtered := applyTaskFilters(db.Model(&Task{}), opts)

		// Total matches, ignoring pagination
		if err := filtered.Count(&total).Error; err != nil {
			return errors.WithStack(err)
		}

		query := applyTaskFilters(db.Model(&Task{}), opts).
			Order("created_at DESC, id DESC").
			Limit(limit).
			Offset(offset)

		if err := query.Find(&tasks).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.BUSY, sqlite3.LOCKED)
	if err != nil {
		return nil, total, errors.WithStack(err)
	}

	wrappedTasks := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		wrappedTasks = append(wrappedTasks, &wrappedTask{t})
	}

	return wrappedTasks, total, nil
}

func applyTaskFilters(query *gorm.DB, opts port.QueryTasksOptions) *gorm.DB {
	if opts.Status != nil {
		query = query.Where("status = ?", string(*opts.Status))
	}

	if opts.Category != nil {
		query = query.Where("category = ?", string(*opts.Category))
	}

	if opts.Priority != nil {
		query = query.Where("priority = ?", string(*opts.Priority))
	}

	if opts.TitleContains != nil {
		query = query.Where("lower(title) LIKE ?", "%"+strings.ToLower(*opts.TitleContains)+"%")
	}

	return query
}

// UpdateTask implements port.TaskStore.
func (s *TaskStore) UpdateTask(ctx context.Context, id model.TaskID, updates port.TaskUpdates) (model.Task, error) {
	var task Task

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		// The read, the mutation and the history append share this
		// transaction so the recorded old value always matches the
		// last committed state.
		if err := db.First(&task, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}

			return errors.WithStack(err)
		}

		oldValue := model.SnapshotOf(&wrappedTask{&task})

		values := map[string]any{}

		if updates.Title != nil {
			values["title"] = *updates.Title
		}
		if updates.Description != nil {
			values["description"] = *updates.Description
		}
		if updates.AssignedTo != nil {
			values["assigned_to"] = *updates.AssignedTo
		}
		if updates.DueDate != nil {
			values["due_date"] = *updates.DueDate
		}
		if updates.Category != nil {
			values["category"] = string(*updates.Category)
		}
		if updates.Priority != nil {
			values["priority"] = string(*updates.Priority)
		}
		if updates.Status != nil {
			values["status"] = string(*updates.Status)
		}

		if len(values) > 0 {
			if err := db.Model(&task).Updates(values).Error; err != nil {
				return errors.WithStack(err)
			}
		}

		if err := db.First(&task, "id = ?", string(id)).Error; err != nil {
			return errors.WithStack(err)
		}

		action := model.HistoryActionUpdated
		if updates.Status != nil {
			action = model.HistoryActionStatusChanged
		}

		entry := newHistoryEntry(task.ID, action, oldValue, model.SnapshotOf(&wrappedTask{&task}))

		if res := db.Create(entry); res.Error != nil {
			return errors.WithStack(res.Error)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedTask{&task}, nil
}

// DeleteTask implements port.TaskStore.
func (s *TaskStore) DeleteTask(ctx context.Context, id model.TaskID) error {
	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		var task Task
		if err := db.First(&task, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}

			return errors.WithStack(err)
		}

		oldValue := model.SnapshotOf(&wrappedTask{&task})

		if err := db.Delete(&task).Error; err != nil {
			return errors.WithStack(err)
		}

		entry := newHistoryEntry(task.ID, model.HistoryActionDeleted, oldValue, nil)

		if res := db.Create(entry); res.Error != nil {
			return errors.WithStack(res.Error)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// GetTaskHistory implements port.TaskStore.
func (s *TaskStore) GetTaskHistory(ctx context.Context, id model.TaskID) ([]model.TaskHistoryEntry, error) {
	var entries []*TaskHistoryEntry

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		err := db.
			Where("task_id = ?", string(id)).
			Order("created_at DESC, id DESC").
			Find(&entries).Error
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	wrappedEntries := make([]model.TaskHistoryEntry, 0, len(entries))
	for _, e := range entries {
		wrappedEntries = append(wrappedEntries, &wrappedTaskHistoryEntry{e})
	}

	return wrappedEntries, nil
}

// GetTaskStats implements port.TaskStore.
func (s *TaskStore) GetTaskStats(ctx context.Context) (*model.TaskStats, error) {
	stats := &model.TaskStats{
		ByStatus:   map[model.Status]int64{},
		ByCategory: map[model.Category]int64{},
	}

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Model(&Task{}).Count(&stats.TotalTasks).Error; err != nil {
			return errors.WithStack(err)
		}

		type groupCount struct {
			Value string
			Total int64
		}

		var byStatus []groupCount
		if err := db.Model(&Task{}).Select("status as value, count(*) as total").Group("status").Scan(&byStatus).Error; err != nil {
			return errors.WithStack(err)
		}

		for _, g := range byStatus {
			stats.ByStatus[model.Status(g.Value)] = g.Total
		}

		var byCategory []groupCount
		if err := db.Model(&Task{}).Select("category as value, count(*) as total").Group("category").Scan(&byCategory).Error; err != nil {
			return errors.WithStack(err)
		}

		for _, g := range byCategory {
			stats.ByCategory[model.Category(g.Value)] = g.Total
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return stats, nil
}

func (s *TaskStore) withRetry(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error, codes ...sqlite3.ErrorCode) error {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	backoff := 500 * time.Millisecond
	maxRetries := 10
	retries := 0

	for {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := fn(ctx, tx); err != nil {
				return errors.WithStack(err)
			}

			return nil
		})
		if err != nil {
			if retries >= maxRetries {
				return errors.WithStack(err)
			}

			var sqliteErr *sqlite3.Error
			if errors.As(err, &sqliteErr) {
				if !slices.Contains(codes, sqliteErr.Code()) {
					return errors.WithStack(err)
				}

				slog.DebugContext(ctx, "transaction failed, will retry", slog.Int("retries", retries), slog.Duration("backoff", backoff), slog.Any("error", errors.WithStack(err)))

				retries++
				time.Sleep(backoff)
				backoff *= 2
				continue
			}

			return errors.WithStack(err)
		}

		return nil
	}
}

func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{
		getDatabase: createGetDatabase(db, &Task{}, &TaskHistoryEntry{}),
	}
}

var _ port.TaskStore = &TaskStore{}

func createGetDatabase(db *gorm.DB, models ...any) func(ctx context.Context) (*gorm.DB, error) {
	var (
		migrateOnce sync.Once
		migrateErr  error
	)

	return func(ctx context.Context) (*gorm.DB, error) {
		migrateOnce.Do(func() {
			if err := db.AutoMigrate(models...); err != nil {
				migrateErr = errors.WithStack(err)
				return
			}
		})
		if migrateErr != nil {
			return nil, errors.WithStack(migrateErr)
		}

		return db, nil
	}
}
