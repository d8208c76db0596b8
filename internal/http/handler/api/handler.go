package api

import (
	"net/http"

	"github.com/bornholm/triage/internal/core/service"
)

type Handler struct {
	taskManager *service.TaskManager
	mux         *http.ServeMux
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func NewHandler(taskManager *service.TaskManager) *Handler {
	h := &Handler{
		taskManager: taskManager,
		mux:         &http.ServeMux{},
	}

	h.mux.Handle("POST /tasks", http.HandlerFunc(h.handleCreateTask))
	h.mux.Handle("GET /tasks", http.HandlerFunc(h.handleListTasks))
	h.mux.Handle("GET /tasks/stats", http.HandlerFunc(h.handleTaskStats))
	h.mux.Handle("GET /tasks/{taskID}", http.HandlerFunc(h.handleGetTask))
	h.mux.Handle("PATCH /tasks/{taskID}", http.HandlerFunc(h.handleUpdateTask))
	h.mux.Handle("DELETE /tasks/{taskID}", http.HandlerFunc(h.handleDeleteTask))

	h.mux.Handle("POST /classify", http.HandlerFunc(h.handleClassify))

	return h
}

var _ http.Handler = &Handler{}
