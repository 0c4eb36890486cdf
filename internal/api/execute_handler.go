package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/engine"
)

var executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "forgeflow_executions_total",
	Help: "Total workflow executions by final status",
}, []string{"status"})

// ExecuteWorkflow выполняет workflow из тела запроса, без сохранения
// определения.
// POST /api/v1/execute
func (h *Handler) ExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	var req ExecuteWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	h.execute(w, r, req.ToDomain())
}

// ExecuteStoredWorkflow выполняет сохранённый workflow.
// POST /api/v1/workflows/{id}/execute
func (h *Handler) ExecuteStoredWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := h.workflows.GetByID(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	h.execute(w, r, wf)
}

// ValidateWorkflow проверяет определение workflow без выполнения.
// POST /api/v1/validate
func (h *Handler) ValidateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req ValidateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	Success(w, engine.Validate(req.ToDomain()))
}

// execute — общий путь выполнения: валидация, прогон, персистенция,
// леджер, событие завершения.
func (h *Handler) execute(w http.ResponseWriter, r *http.Request, wf *domain.Workflow) {
	result := engine.Validate(wf)
	if !result.Valid {
		InvalidWorkflow(w, result.Errors)
		return
	}

	exec := h.orchestrator.Run(r.Context(), wf)
	executionsTotal.WithLabelValues(string(exec.Status)).Inc()

	// Сохранение и события не должны ронять ответ: прогон уже
	// состоялся, клиент получает его результат в любом случае
	if h.executions != nil {
		if err := h.executions.Create(r.Context(), exec); err != nil {
			h.logger.Error("failed to persist execution", "execution_id", exec.ID, "error", err)
		}
	}

	if h.ledger != nil {
		success := exec.Status == domain.StatusCompleted
		if _, err := h.ledger.RecordExecution(context.WithoutCancel(r.Context()), exec.WorkflowID, exec.ID, exec.Results, success); err != nil {
			h.logger.Warn("ledger write failed", "execution_id", exec.ID, "error", err)
		}
	}

	if h.publisher != nil {
		if err := h.publisher.PublishExecutionCompleted(context.WithoutCancel(r.Context()), exec); err != nil {
			h.logger.Warn("failed to publish completion event", "execution_id", exec.ID, "error", err)
		}
	}

	Success(w, exec)
}
