package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Прямое выполнение и валидация (без сохранения)
	mux.Handle("POST /api/v1/execute", chain(http.HandlerFunc(h.ExecuteWorkflow)))
	mux.Handle("POST /api/v1/validate", chain(http.HandlerFunc(h.ValidateWorkflow)))

	// Workflows
	mux.Handle("GET /api/v1/workflows", chain(http.HandlerFunc(h.ListWorkflows)))
	mux.Handle("POST /api/v1/workflows", chain(http.HandlerFunc(h.CreateWorkflow)))
	mux.Handle("GET /api/v1/workflows/active", chain(http.HandlerFunc(h.ListActiveWorkflows)))
	mux.Handle("GET /api/v1/workflows/{id}", chain(http.HandlerFunc(h.GetWorkflow)))
	mux.Handle("PUT /api/v1/workflows/{id}", chain(http.HandlerFunc(h.UpdateWorkflow)))
	mux.Handle("DELETE /api/v1/workflows/{id}", chain(http.HandlerFunc(h.DeleteWorkflow)))
	mux.Handle("PUT /api/v1/workflows/{id}/active", chain(http.HandlerFunc(h.SetWorkflowActive)))
	mux.Handle("POST /api/v1/workflows/{id}/execute", chain(http.HandlerFunc(h.ExecuteStoredWorkflow)))

	// Executions
	mux.Handle("GET /api/v1/executions", chain(http.HandlerFunc(h.ListExecutions)))
	mux.Handle("GET /api/v1/executions/active", chain(http.HandlerFunc(h.ListActiveExecutions)))
	mux.Handle("GET /api/v1/executions/{id}", chain(http.HandlerFunc(h.GetExecution)))
}
