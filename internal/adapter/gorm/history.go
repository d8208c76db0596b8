package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/bornholm/triage/internal/core/model"
	"github.com/pkg/errors"
)

// TaskHistoryEntry rows deliberately carry no foreign key on TaskID:
// the audit trail must outlive the deletion of the task it references.
type TaskHistoryEntry struct {
	ID        string `gorm:"primarykey;autoIncrement:false"`
	CreatedAt time.Time

	TaskID   string `gorm:"not null;index"`
	Action   string `gorm:"not null"`
	OldValue *Snapshot
	NewValue *Snapshot
}

type wrappedTaskHistoryEntry struct {
	e *TaskHistoryEntry
}

// ID implements model.TaskHistoryEntry.
func (w *wrappedTaskHistoryEntry) ID() model.TaskHistoryEntryID {
	return model.TaskHistoryEntryID(w.e.ID)
}

// TaskID implements model.TaskHistoryEntry.
func (w *wrappedTaskHistoryEntry) TaskID() model.TaskID {
	return model.TaskID(w.e.TaskID)
}

// Action implements model.TaskHistoryEntry.
func (w *wrappedTaskHistoryEntry) Action() model.HistoryAction {
	return model.HistoryAction(w.e.Action)
}

// OldValue implements model.TaskHistoryEntry.
func (w *wrappedTaskHistoryEntry) OldValue() *model.TaskSnapshot {
	if w.e.OldValue == nil {
		return nil
	}

	snapshot := model.TaskSnapshot(*w.e.OldValue)

	return &snapshot
}

// NewValue implements model.TaskHistoryEntry.
func (w *wrappedTaskHistoryEntry) NewValue() *model.TaskSnapshot {
	if w.e.NewValue == nil {
		return nil
	}

	snapshot := model.TaskSnapshot(*w.e.NewValue)

	return &snapshot
}

// ChangedAt implements model.TaskHistoryEntry.
func (w *wrappedTaskHistoryEntry) ChangedAt() time.Time {
	return w.e.CreatedAt
}

var _ model.TaskHistoryEntry = &wrappedTaskHistoryEntry{}

func newHistoryEntry(taskID string, action model.HistoryAction, oldValue *model.TaskSnapshot, newValue *model.TaskSnapshot) *TaskHistoryEntry {
	entry := &TaskHistoryEntry{
		ID:     string(model.NewTaskHistoryEntryID()),
		TaskID: taskID,
		Action: string(action),
	}

	if oldValue != nil {
		snapshot := Snapshot(*oldValue)
		entry.OldValue = &snapshot
	}

	if newValue != nil {
		snapshot := Snapshot(*newValue)
		entry.NewValue = &snapshot
	}

	return entry
}

type Snapshot model.TaskSnapshot

func (s *Snapshot) Scan(value interface{}) error {
	text, ok := value.(string)
	if !ok {
		return errors.Errorf("unexpected type '%T'", value)
	}

	if err := json.Unmarshal([]byte(text), s); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (s *Snapshot) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return string(data), nil
}
