package model

import (
	"github.com/rs/xid"
)

type TaskID string

func NewTaskID() TaskID {
	return TaskID(xid.New().String())
}

type Category string

const (
	CategoryScheduling Category = "scheduling"
	CategoryFinance    Category = "finance"
	CategoryTechnical  Category = "technical"
	CategorySafety     Category = "safety"
	CategoryGeneral    Category = "general"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryScheduling, CategoryFinance, CategoryTechnical, CategorySafety, CategoryGeneral:
		return true
	}

	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}

	return false
}

// Status is an open set. StatusPending is the only value the core
// ever assigns itself, every other transition is caller-driven.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Task interface {
	WithLifecycle

	ID() TaskID
	Title() string
	Description() string
	AssignedTo() string
	DueDate() string
	Category() Category
	Priority() Priority
	SuggestedActions() []string
	Entities() ExtractedEntities
	Status() Status
}
