package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// --- Response types (дублируются из api, CLI не импортирует internal/api) ---

// WorkflowResponse — workflow из API.
type WorkflowResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Nodes       []json.RawMessage `json:"nodes"`
	Edges       []json.RawMessage `json:"edges"`
	IsActive    bool              `json:"isActive"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	UpdatedAt   string            `json:"updatedAt,omitempty"`
}

// NodeResultResponse — итог узла из API.
type NodeResultResponse struct {
	NodeID     string `json:"nodeId"`
	Success    bool   `json:"success"`
	Output     any    `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// ExecutionResponse — execution из API.
type ExecutionResponse struct {
	ID          string               `json:"executionId"`
	WorkflowID  string               `json:"workflowId"`
	Status      string               `json:"status"`
	Results     []NodeResultResponse `json:"results"`
	StartedAt   string               `json:"startedAt,omitempty"`
	CompletedAt string               `json:"completedAt,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// RunStateResponse — снимок активного прогона из API.
type RunStateResponse struct {
	ExecutionID string `json:"executionId"`
	WorkflowID  string `json:"workflowId"`
	StartedAt   string `json:"startedAt"`
	Nodes       []struct {
		NodeID   string `json:"nodeId"`
		Status   string `json:"status"`
		Attempts int    `json:"attempts,omitempty"`
		Error    string `json:"error,omitempty"`
	} `json:"nodes"`
}

// ValidationResponse — результат валидации из API.
type ValidationResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ListExecutionsOpts — параметры фильтрации executions.
type ListExecutionsOpts struct {
	WorkflowID string
	Status     string
	Limit      int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для ForgeFlow API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Workflows ---

// ListWorkflows возвращает все workflows.
func (c *Client) ListWorkflows() ([]WorkflowResponse, error) {
	var workflows []WorkflowResponse
	err := c.list("/api/v1/workflows", nil, &workflows)
	return workflows, err
}

// ListActiveWorkflows возвращает активные workflows.
func (c *Client) ListActiveWorkflows() ([]WorkflowResponse, error) {
	var workflows []WorkflowResponse
	err := c.list("/api/v1/workflows/active", nil, &workflows)
	return workflows, err
}

// CreateWorkflow создаёт workflow из JSON-определения.
func (c *Client) CreateWorkflow(definition json.RawMessage) (*WorkflowResponse, error) {
	var wf WorkflowResponse
	err := c.post("/api/v1/workflows", definition, &wf)
	return &wf, err
}

// GetWorkflow возвращает workflow по ID.
func (c *Client) GetWorkflow(id string) (*WorkflowResponse, error) {
	var wf WorkflowResponse
	err := c.get("/api/v1/workflows/"+id, &wf)
	return &wf, err
}

// DeleteWorkflow удаляет workflow.
func (c *Client) DeleteWorkflow(id string) error {
	return c.delete("/api/v1/workflows/" + id)
}

// SetWorkflowActive включает или выключает workflow.
// API отвечает 204, поэтому workflow перечитывается отдельно.
func (c *Client) SetWorkflowActive(id string, active bool) (*WorkflowResponse, error) {
	body := map[string]bool{"isActive": active}
	if err := c.put("/api/v1/workflows/"+id+"/active", body, nil); err != nil {
		return nil, err
	}
	return c.GetWorkflow(id)
}

// ExecuteWorkflow запускает сохранённый workflow.
func (c *Client) ExecuteWorkflow(id string) (*ExecutionResponse, error) {
	var exec ExecutionResponse
	err := c.post("/api/v1/workflows/"+id+"/execute", nil, &exec)
	return &exec, err
}

// ExecuteDefinition запускает workflow из JSON-определения без сохранения.
func (c *Client) ExecuteDefinition(definition json.RawMessage) (*ExecutionResponse, error) {
	var exec ExecutionResponse
	err := c.post("/api/v1/execute", definition, &exec)
	return &exec, err
}

// ValidateDefinition проверяет workflow без выполнения.
func (c *Client) ValidateDefinition(definition json.RawMessage) (*ValidationResponse, error) {
	var result ValidationResponse
	err := c.post("/api/v1/validate", definition, &result)
	return &result, err
}

// --- Executions ---

// ListExecutions возвращает executions с фильтрацией.
func (c *Client) ListExecutions(opts ListExecutionsOpts) ([]ExecutionResponse, error) {
	params := url.Values{}
	if opts.WorkflowID != "" {
		params.Set("workflowId", opts.WorkflowID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var executions []ExecutionResponse
	err := c.list("/api/v1/executions", params, &executions)
	return executions, err
}

// GetExecution возвращает execution по ID.
func (c *Client) GetExecution(id string) (*ExecutionResponse, error) {
	var exec ExecutionResponse
	err := c.get("/api/v1/executions/"+id, &exec)
	return &exec, err
}

// ListActiveExecutions возвращает выполняющиеся сейчас executions.
func (c *Client) ListActiveExecutions() ([]RunStateResponse, error) {
	var states []RunStateResponse
	err := c.list("/api/v1/executions/active", nil, &states)
	return states, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	if len(er.Error.Details) > 0 {
		return fmt.Errorf("%s: %s\n  - %s",
			er.Error.Code, er.Error.Message, strings.Join(er.Error.Details, "\n  - "))
	}
	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
