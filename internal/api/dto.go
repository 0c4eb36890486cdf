package api

import (
	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// Workflow сериализуется в формате обмена с канвасом напрямую
// (domain.Workflow несёт нужные JSON-теги), поэтому отдельных
// response-типов для него нет.

// CreateWorkflowRequest — тело POST /api/v1/workflows.
type CreateWorkflowRequest struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Nodes       []domain.Node `json:"nodes"`
	Edges       []domain.Edge `json:"edges"`
	IsActive    bool          `json:"isActive"`
}

// ToDomain собирает domain.Workflow из запроса.
func (r *CreateWorkflowRequest) ToDomain() *domain.Workflow {
	return &domain.Workflow{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Nodes:       r.Nodes,
		Edges:       r.Edges,
		IsActive:    r.IsActive,
	}
}

// UpdateWorkflowRequest — тело PUT /api/v1/workflows/{id}.
// nil-поля не изменяются.
type UpdateWorkflowRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Nodes       *[]domain.Node `json:"nodes"`
	Edges       *[]domain.Edge `json:"edges"`
	IsActive    *bool          `json:"isActive"`
}

// Apply накладывает изменения на workflow.
func (r *UpdateWorkflowRequest) Apply(wf *domain.Workflow) {
	if r.Name != nil {
		wf.Name = *r.Name
	}
	if r.Description != nil {
		wf.Description = *r.Description
	}
	if r.Nodes != nil {
		wf.Nodes = *r.Nodes
	}
	if r.Edges != nil {
		wf.Edges = *r.Edges
	}
	if r.IsActive != nil {
		wf.IsActive = *r.IsActive
	}
}

// ExecuteWorkflowRequest — тело POST /api/v1/execute: полное
// определение workflow для одноразового прогона без сохранения.
type ExecuteWorkflowRequest = CreateWorkflowRequest

// ValidateWorkflowRequest — тело POST /api/v1/validate.
type ValidateWorkflowRequest = CreateWorkflowRequest
