package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/bornholm/triage/internal/core/model"
	"github.com/bornholm/triage/internal/core/port"
	"github.com/pkg/errors"
)

type Task struct {
	ID        string `gorm:"primarykey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	AssignedTo  string
	DueDate     string

	Category string `gorm:"not null;index"`
	Priority string `gorm:"not null;index"`
	Status   string `gorm:"not null;index"`

	SuggestedActions *StringList
	Entities         *Entities
}

type wrappedTask struct {
	t *Task
}

// ID implements model.Task.
func (w *wrappedTask) ID() model.TaskID {
	return model.TaskID(w.t.ID)
}

// Title implements model.Task.
func (w *wrappedTask) Title() string {
	return w.t.Title
}

// Description implements model.Task.
func (w *wrappedTask) Description() string {
	return w.t.Description
}

// AssignedTo implements model.Task.
func (w *wrappedTask) AssignedTo() string {
	return w.t.AssignedTo
}

// DueDate implements model.Task.
func (w *wrappedTask) DueDate() string {
	return w.t.DueDate
}

// Category implements model.Task.
func (w *wrappedTask) Category() model.Category {
	return model.Category(w.t.Category)
}

// Priority implements model.Task.
func (w *wrappedTask) Priority() model.Priority {
	return model.Priority(w.t.Priority)
}

// Status implements model.Task.
func (w *wrappedTask) Status() model.Status {
	return model.Status(w.t.Status)
}

// SuggestedActions implements model.Task.
func (w *wrappedTask) SuggestedActions() []string {
	if w.t.SuggestedActions == nil {
		return []string{}
	}

	return *w.t.SuggestedActions
}

// Entities implements model.Task.
func (w *wrappedTask) Entities() model.ExtractedEntities {
	if w.t.Entities == nil {
		return model.ExtractedEntities{Dates: []string{}, People: []string{}}
	}

	return model.ExtractedEntities(*w.t.Entities)
}

// CreatedAt implements model.Task.
func (w *wrappedTask) CreatedAt() time.Time {
	return w.t.CreatedAt
}

// UpdatedAt implements model.Task.
func (w *wrappedTask) UpdatedAt() time.Time {
	return w.t.UpdatedAt
}

var _ model.Task = &wrappedTask{}

func fromNewTask(t port.NewTask) *Task {
	actions := StringList(t.SuggestedActions)
	entities := Entities(t.Entities)

	return &Task{
		ID:               string(model.NewTaskID()),
		Title:            t.Title,
		Description:      t.Description,
		AssignedTo:       t.AssignedTo,
		DueDate:          t.DueDate,
		Category:         string(t.Category),
		Priority:         string(t.Priority),
		Status:           string(t.Status),
		SuggestedActions: &actions,
		Entities:         &entities,
	}
}

type StringList []string

func (l *StringList) Scan(value interface{}) error {
	text, ok := value.(string)
	if !ok {
		return errors.Errorf("unexpected type '%T'", value)
	}

	if err := json.Unmarshal([]byte(text), l); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (l *StringList) Value() (driver.Value, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return string(data), nil
}

type Entities model.ExtractedEntities

func (e *Entities) Scan(value interface{}) error {
	text, ok := value.(string)
	if !ok {
		return errors.Errorf("unexpected type '%T'", value)
	}

	if err := json.Unmarshal([]byte(text), e); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (e *Entities) Value() (driver.Value, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return string(data), nil
}
