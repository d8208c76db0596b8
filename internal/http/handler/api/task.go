package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/triage/internal/core/model"
	"github.com/bornholm/triage/internal/core/port"
	"github.com/bornholm/triage/internal/core/service"
	"github.com/pkg/errors"
)

type Task struct {
	ID                string                  `json:"id"`
	Title             string                  `json:"title"`
	Description       string                  `json:"description"`
	AssignedTo        string                  `json:"assigned_to,omitempty"`
	DueDate           string                  `json:"due_date,omitempty"`
	Category          model.Category          `json:"category"`
	Priority          model.Priority          `json:"priority"`
	SuggestedActions  []string                `json:"suggested_actions"`
	ExtractedEntities model.ExtractedEntities `json:"extracted_entities"`
	Status            model.Status            `json:"status"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

func toTask(t model.Task) Task {
	return Task{
		ID:                string(t.ID()),
		Title:             t.Title(),
		Description:       t.Description(),
		AssignedTo:        t.AssignedTo(),
		DueDate:           t.DueDate(),
		Category:          t.Category(),
		Priority:          t.Priority(),
		SuggestedActions:  t.SuggestedActions(),
		ExtractedEntities: t.Entities(),
		Status:            t.Status(),
		CreatedAt:         t.CreatedAt(),
		UpdatedAt:         t.UpdatedAt(),
	}
}

type CreateTaskRequest struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	AssignedTo       string          `json:"assigned_to,omitempty"`
	DueDate          string          `json:"due_date,omitempty"`
	OverrideCategory *model.Category `json:"override_category,omitempty"`
	OverridePriority *model.Priority `json:"override_priority,omitempty"`
}

type GetTaskResponse struct {
	Task    Task           `json:"task"`
	History []HistoryEntry `json:"history,omitempty"`
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(ctx, "could not decode request body", slogx.Error(err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	task, err := h.taskManager.CreateTask(ctx, service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		Category:    req.OverrideCategory,
		Priority:    req.OverridePriority,
	})
	if err != nil {
		if errors.Is(err, port.ErrInvalidTask) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.ErrorContext(ctx, "could not create task", slogx.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	res := GetTaskResponse{
		Task: toTask(task),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")

	if err := encoder.Encode(res); err != nil {
		slog.ErrorContext(ctx, "could not encode response", slogx.Error(err))
	}
}

type ListTasksResponse struct {
	Tasks  []Task `json:"tasks"`
	Total  int64  `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	limit, offset := h.taskManager.DefaultPagination()
	if v := getQueryInt(query, "limit"); v != nil {
		limit = *v
	}
	if v := getQueryInt(query, "offset"); v != nil {
		offset = *v
	}

	opts := port.QueryTasksOptions{
		Limit:  &limit,
		Offset: &offset,
	}

	if raw := query.Get("status"); raw != "" {
		status := model.Status(raw)
		opts.Status = &status
	}

	if raw := query.Get("category"); raw != "" {
		category := model.Category(raw)
		opts.Category = &category
	}

	if raw := query.Get("priority"); raw != "" {
		priority := model.Priority(raw)
		opts.Priority = &priority
	}

	if raw := query.Get("title"); raw != "" {
		opts.TitleContains = &raw
	}

	tasks, total, err := h.taskManager.QueryTasks(ctx, opts)
	if err != nil {
		slog.ErrorContext(ctx, "could not query tasks", slogx.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	res := ListTasksResponse{
		Tasks:  make([]Task, 0, len(tasks)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}

	for _, t := range tasks {
		res.Tasks = append(res.Tasks, toTask(t))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")

	w.Header().Set("Content-Type", "application/json")

	if err := encoder.Encode(res); err != nil {
		slog.ErrorContext(ctx, "could not encode response", slogx.Error(err))
	}
}

type HistoryEntry struct {
	ID        string              `json:"id"`
	TaskID    string              `json:"task_id"`
	Action    model.HistoryAction `json:"action"`
	OldValue  *model.TaskSnapshot `json:"old_value,omitempty"`
	NewValue  *model.TaskSnapshot `json:"new_value,omitempty"`
	ChangedAt time.Time           `json:"changed_at"`
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID := model.TaskID(r.PathValue("taskID"))

	ctx := r.Context()

	task, history, err := h.taskManager.GetTaskWithHistory(ctx, taskID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not get task", slogx.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	res := GetTaskResponse{
		Task:    toTask(task),
		History: make([]HistoryEntry, 0, len(history)),
	}

	for _, e := range history {
		res.History = append(res.History, HistoryEntry{
			ID:        string(e.ID()),
			TaskID:    string(e.TaskID()),
			Action:    e.Action(),
			OldValue:  e.OldValue(),
			NewValue:  e.NewValue(),
			ChangedAt: e.ChangedAt(),
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")

	w.Header().Set("Content-Type", "application/json")

	if err := encoder.Encode(res); err != nil {
		slog.ErrorContext(ctx, "could not encode response", slogx.Error(err))
	}
}

type UpdateTaskRequest struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	AssignedTo  *string         `json:"assigned_to,omitempty"`
	DueDate     *string         `json:"due_date,omitempty"`
	Category    *model.Category `json:"category,omitempty"`
	Priority    *model.Priority `json:"priority,omitempty"`
	Status      *model.Status   `json:"status,omitempty"`
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := model.TaskID(r.PathValue("taskID"))

	ctx := r.Context()

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(ctx, "could not decode request body", slogx.Error(err))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	updates := port.TaskUpdates{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      req.Status,
	}

	task, err := h.taskManager.UpdateTask(ctx, taskID, updates)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		if errors.Is(err, port.ErrInvalidTask) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		slog.ErrorContext(ctx, "could not update task", slogx.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	res := GetTaskResponse{
		Task: toTask(task),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")

	w.Header().Set("Content-Type", "application/json")

	if err := encoder.Encode(res); err != nil {
		slog.ErrorContext(ctx, "could not encode response", slogx.Error(err))
	}
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := model.TaskID(r.PathValue("taskID"))

	ctx := r.Context()

	if err := h.taskManager.DeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not delete task", slogx.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type TaskStatsResponse struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByCategory map[string]int64 `json:"by_category"`
}

func (h *Handler) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.taskManager.GetTaskStats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "could not get task stats", slogx.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	res := TaskStatsResponse{
		Total:      stats.TotalTasks,
		ByStatus:   make(map[string]int64, len(stats.ByStatus)),
		ByCategory: make(map[string]int64, len(stats.ByCategory)),
	}

	for status, total := range stats.ByStatus {
		res.ByStatus[string(status)] = total
	}

	for category, total := range stats.ByCategory {
		res.ByCategory[string(category)] = total
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")

	w.Header().Set("Content-Type", "application/json")

	if err := encoder.Encode(res); err != nil {
		slog.ErrorContext(ctx, "could not encode response", slogx.Error(err))
	}
}
