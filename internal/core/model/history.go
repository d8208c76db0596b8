package model

import (
	"time"

	"github.com/rs/xid"
)

type TaskHistoryEntryID string

func NewTaskHistoryEntryID() TaskHistoryEntryID {
	return TaskHistoryEntryID(xid.New().String())
}

type HistoryAction string

const (
	HistoryActionCreated       HistoryAction = "created"
	HistoryActionUpdated       HistoryAction = "updated"
	HistoryActionStatusChanged HistoryAction = "status_changed"
	HistoryActionDeleted       HistoryAction = "deleted"
)

// TaskHistoryEntry is an immutable audit record of one task mutation.
// Entries are append-only and outlive the deletion of the task they
// reference.
type TaskHistoryEntry interface {
	ID() TaskHistoryEntryID
	TaskID() TaskID
	Action() HistoryAction
	OldValue() *TaskSnapshot
	NewValue() *TaskSnapshot
	ChangedAt() time.Time
}

// TaskSnapshot is the full state of a task as recorded in a history
// entry, before or after a mutation.
type TaskSnapshot struct {
	ID               TaskID            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	AssignedTo       string            `json:"assigned_to,omitempty"`
	DueDate          string            `json:"due_date,omitempty"`
	Category         Category          `json:"category"`
	Priority         Priority          `json:"priority"`
	SuggestedActions []string          `json:"suggested_actions"`
	Entities         ExtractedEntities `json:"extracted_entities"`
	Status           Status            `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func SnapshotOf(t Task) *TaskSnapshot {
	return &TaskSnapshot{
		ID:               t.ID(),
		Title:            t.Title(),
		Description:      t.Description(),
		AssignedTo:       t.AssignedTo(),
		DueDate:          t.DueDate(),
		Category:         t.Category(),
		Priority:         t.Priority(),
		SuggestedActions: t.SuggestedActions(),
		Entities:         t.Entities(),
		Status:           t.Status(),
		CreatedAt:        t.CreatedAt(),
		UpdatedAt:        t.UpdatedAt(),
	}
}
