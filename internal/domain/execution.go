package domain

import (
	"time"

	"github.com/google/uuid"
)

// NodeResult — результат выполнения одного узла в рамках прогона.
//
// JSON-теги соответствуют формату обмена: nodeId, durationMs.
type NodeResult struct {
	NodeID     string `json:"nodeId"`
	Success    bool   `json:"success"`
	Output     any    `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// Execution — запись о прогоне workflow.
type Execution struct {
	ID          string          `json:"executionId"`
	WorkflowID  string          `json:"workflowId"`
	Status      ExecutionStatus `json:"status"`
	Results     []NodeResult    `json:"results"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt time.Time       `json:"completedAt,omitzero"`
	Error       string          `json:"error,omitempty"`
}

// NewExecution создаёт прогон в статусе running.
func NewExecution(workflowID string) *Execution {
	return &Execution{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Status:     StatusRunning,
		Results:    make([]NodeResult, 0),
		StartedAt:  time.Now().UTC(),
	}
}

// Append добавляет результат узла.
func (e *Execution) Append(r NodeResult) {
	e.Results = append(e.Results, r)
}

// Finalize переводит прогон в терминальный статус: completed, если все
// узлы завершились успешно, иначе failed.
func (e *Execution) Finalize() {
	e.CompletedAt = time.Now().UTC()
	e.Status = StatusCompleted
	for _, r := range e.Results {
		if !r.Success {
			e.Status = StatusFailed
			return
		}
	}
}

// MarkFailed переводит прогон в failed с сообщением об ошибке.
// Используется при невосстановимых сбоях раннера: частичные результаты
// сохраняются.
func (e *Execution) MarkFailed(msg string) {
	e.CompletedAt = time.Now().UTC()
	e.Status = StatusFailed
	e.Error = msg
}

// ResultFor возвращает результат узла по ID.
func (e *Execution) ResultFor(nodeID string) (NodeResult, bool) {
	for _, r := range e.Results {
		if r.NodeID == nodeID {
			return r, true
		}
	}
	return NodeResult{}, false
}
