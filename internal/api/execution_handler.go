package api

import (
	"net/http"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/repo"
)

// ListExecutions возвращает записи прогонов.
// GET /api/v1/executions?workflowId=...&status=...&limit=...&offset=...
func (h *Handler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	filter := repo.ExecutionFilter{
		WorkflowID: r.URL.Query().Get("workflowId"),
		Status:     domain.ExecutionStatus(r.URL.Query().Get("status")),
		Limit:      queryInt(r, "limit", 50),
		Offset:     queryInt(r, "offset", 0),
	}

	executions, err := h.executions.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	List(w, executions, len(executions))
}

// GetExecution возвращает запись прогона по ID. Для прогона, который
// ещё идёт, отвечает снимком из side-table раннера: в хранилище запись
// появляется только по завершении.
// GET /api/v1/executions/{id}
func (h *Handler) GetExecution(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if state, ok := h.orchestrator.Tracker().Snapshot(id); ok {
		Success(w, state)
		return
	}

	exec, err := h.executions.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "execution not found") {
		return
	}

	Success(w, exec)
}

// ListActiveExecutions возвращает состояние прогонов, идущих прямо
// сейчас, из side-table раннера.
// GET /api/v1/executions/active
func (h *Handler) ListActiveExecutions(w http.ResponseWriter, _ *http.Request) {
	states := h.orchestrator.Tracker().Active()
	List(w, states, len(states))
}
