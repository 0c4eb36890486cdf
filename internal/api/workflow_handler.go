package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ListWorkflows возвращает список workflows.
// GET /api/v1/workflows
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	workflows, err := h.workflows.List(r.Context(), limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	List(w, workflows, len(workflows))
}

// ListActiveWorkflows возвращает активные workflows.
// GET /api/v1/workflows/active
func (h *Handler) ListActiveWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := h.workflows.ListActive(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	List(w, workflows, len(workflows))
}

// CreateWorkflow сохраняет новый workflow.
// POST /api/v1/workflows
func (h *Handler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.ID == "" {
		BadRequest(w, "id is required")
		return
	}
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	wf := req.ToDomain()
	if err := h.workflows.Create(r.Context(), wf); err != nil {
		HandleRepoError(w, h.logger, err, "")
		return
	}

	Created(w, wf)
}

// GetWorkflow возвращает workflow по ID.
// GET /api/v1/workflows/{id}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := h.workflows.GetByID(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	Success(w, wf)
}

// UpdateWorkflow обновляет workflow.
// PUT /api/v1/workflows/{id}
func (h *Handler) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req UpdateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	wf, err := h.workflows.GetByID(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	req.Apply(wf)

	if err := h.workflows.Update(r.Context(), wf); err != nil {
		HandleRepoError(w, h.logger, err, "workflow not found")
		return
	}

	Success(w, wf)
}

// DeleteWorkflow удаляет workflow.
// DELETE /api/v1/workflows/{id}
func (h *Handler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := h.workflows.Delete(r.Context(), r.PathValue("id")); err != nil {
		HandleRepoError(w, h.logger, err, "workflow not found")
		return
	}

	NoContent(w)
}

// SetWorkflowActive переключает флаг активности.
// PUT /api/v1/workflows/{id}/active
func (h *Handler) SetWorkflowActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if err := h.workflows.SetActive(r.Context(), r.PathValue("id"), req.IsActive); err != nil {
		HandleRepoError(w, h.logger, err, "workflow not found")
		return
	}

	NoContent(w)
}

// queryInt читает числовой query-параметр с значением по умолчанию.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
