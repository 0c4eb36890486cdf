package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/nodes"
	"github.com/0x-Shashi/Forge-Flow/internal/repo"
	"github.com/0x-Shashi/Forge-Flow/internal/runner"
)

// memWorkflows — in-memory WorkflowStore.
type memWorkflows struct {
	items map[string]*domain.Workflow
}

func newMemWorkflows() *memWorkflows {
	return &memWorkflows{items: make(map[string]*domain.Workflow)}
}

func (m *memWorkflows) Create(_ context.Context, wf *domain.Workflow) error {
	if _, ok := m.items[wf.ID]; ok {
		return fmt.Errorf("%w: workflow %s", repo.ErrAlreadyExists, wf.ID)
	}
	m.items[wf.ID] = wf
	return nil
}

func (m *memWorkflows) GetByID(_ context.Context, id string) (*domain.Workflow, error) {
	wf, ok := m.items[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return wf, nil
}

func (m *memWorkflows) List(_ context.Context, _, _ int) ([]domain.Workflow, error) {
	out := make([]domain.Workflow, 0, len(m.items))
	for _, wf := range m.items {
		out = append(out, *wf)
	}
	return out, nil
}

func (m *memWorkflows) ListActive(_ context.Context) ([]domain.Workflow, error) {
	out := make([]domain.Workflow, 0)
	for _, wf := range m.items {
		if wf.IsActive {
			out = append(out, *wf)
		}
	}
	return out, nil
}

func (m *memWorkflows) Update(_ context.Context, wf *domain.Workflow) error {
	if _, ok := m.items[wf.ID]; !ok {
		return repo.ErrNotFound
	}
	m.items[wf.ID] = wf
	return nil
}

func (m *memWorkflows) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memWorkflows) SetActive(_ context.Context, id string, active bool) error {
	wf, ok := m.items[id]
	if !ok {
		return repo.ErrNotFound
	}
	wf.IsActive = active
	return nil
}

// memExecutions — in-memory ExecutionStore.
type memExecutions struct {
	items map[string]*domain.Execution
}

func newMemExecutions() *memExecutions {
	return &memExecutions{items: make(map[string]*domain.Execution)}
}

func (m *memExecutions) Create(_ context.Context, exec *domain.Execution) error {
	m.items[exec.ID] = exec
	return nil
}

func (m *memExecutions) GetByID(_ context.Context, id string) (*domain.Execution, error) {
	exec, ok := m.items[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return exec, nil
}

func (m *memExecutions) List(_ context.Context, _ repo.ExecutionFilter) ([]domain.Execution, error) {
	out := make([]domain.Execution, 0, len(m.items))
	for _, exec := range m.items {
		out = append(out, *exec)
	}
	return out, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memWorkflows, *memExecutions) {
	t.Helper()

	workflows := newMemWorkflows()
	executions := newMemExecutions()

	orch := runner.New(runner.Config{
		Registry: nodes.DefaultRegistry(nodes.Deps{}),
	})

	handler := NewHandler(Config{
		Workflows:    workflows,
		Executions:   executions,
		Orchestrator: orch,
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, workflows, executions
}

func validBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"id":   "demo",
		"name": "Demo",
		"nodes": []map[string]any{
			{"id": "t", "kind": "trigger"},
			{"id": "act", "kind": "action", "config": map[string]any{"actionType": "other"}},
		},
		"edges": []map[string]any{
			{"source": "t", "target": "act"},
		},
	})
	return body
}

func TestExecuteWorkflow(t *testing.T) {
	srv, _, executions := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/execute", "application/json", bytes.NewReader(validBody()))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var envelope struct {
		Data domain.Execution `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	exec := envelope.Data
	if exec.Status != domain.StatusCompleted {
		t.Errorf("expected completed, got %s", exec.Status)
	}
	if len(exec.Results) != 2 {
		t.Errorf("expected 2 node results, got %d", len(exec.Results))
	}
	if exec.WorkflowID != "demo" {
		t.Errorf("unexpected workflowId: %s", exec.WorkflowID)
	}

	// Прогон сохранён
	if _, err := executions.GetByID(context.Background(), exec.ID); err != nil {
		t.Error("execution was not persisted")
	}
}

func TestExecuteWorkflow_InvalidRejected(t *testing.T) {
	srv, _, executions := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"id":   "bad",
		"name": "Bad",
		"nodes": []map[string]any{
			{"id": "api", "kind": "api"},
		},
	})

	resp, err := http.Post(srv.URL+"/api/v1/execute", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var envelope ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != ErrCodeInvalid {
		t.Errorf("expected INVALID_WORKFLOW, got %s", envelope.Error.Code)
	}
	if len(envelope.Error.Details) == 0 {
		t.Error("expected validation errors in details")
	}

	if len(executions.items) != 0 {
		t.Error("invalid workflow must not produce an execution")
	}
}

func TestValidateWorkflow(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/validate", "application/json", bytes.NewReader(validBody()))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			Valid  bool     `json:"valid"`
			Errors []string `json:"errors"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Valid {
		t.Errorf("expected valid, got errors %v", envelope.Data.Errors)
	}
}

func TestWorkflowCRUD(t *testing.T) {
	srv, _, _ := newTestServer(t)
	client := srv.Client()

	// Create
	resp, err := client.Post(srv.URL+"/api/v1/workflows", "application/json", bytes.NewReader(validBody()))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	// Duplicate → 409
	resp, _ = client.Post(srv.URL+"/api/v1/workflows", "application/json", bytes.NewReader(validBody()))
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", resp.StatusCode)
	}

	// Get
	resp, err = client.Get(srv.URL + "/api/v1/workflows/demo")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	var envelope struct {
		Data domain.Workflow `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&envelope)
	resp.Body.Close()
	if envelope.Data.ID != "demo" || len(envelope.Data.Nodes) != 2 {
		t.Errorf("unexpected workflow: %+v", envelope.Data)
	}

	// Execute stored
	resp, err = client.Post(srv.URL+"/api/v1/workflows/demo/execute", "application/json", nil)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Delete
	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/workflows/demo", nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	// Get после удаления → 404
	resp, _ = client.Get(srv.URL + "/api/v1/workflows/demo")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetExecution_NotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/executions/nope")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
