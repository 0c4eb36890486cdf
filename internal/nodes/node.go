package nodes

import (
	"context"
	"errors"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// Ошибки исполнителей узлов.
var (
	// ErrExecutorNotFound — тип узла не найден в реестре.
	ErrExecutorNotFound = errors.New("node executor not found")

	// ErrInvalidConfig — невалидная конфигурация узла.
	ErrInvalidConfig = errors.New("invalid node config")

	// ErrNodeCancelled — выполнение узла отменено контекстом.
	ErrNodeCancelled = errors.New("node execution cancelled")
)

// Executor — исполнитель одного типа узла.
//
// Каждый тип (trigger, api, ai, logic, action) реализует этот
// интерфейс. Исполнитель не знает о графе: вход уже собран раннером
// из выходов предшественников.
type Executor interface {
	// Kind возвращает тип узла.
	Kind() domain.NodeKind

	// Execute выполняет узел и возвращает результат.
	// Исполнитель должен уважать ctx для отмены и таймаутов.
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Request — входные данные для выполнения узла.
type Request struct {
	// NodeID — идентификатор узла.
	NodeID string

	// WorkflowID / ExecutionID — идентификаторы текущего прогона.
	WorkflowID  string
	ExecutionID string

	// Config — конфигурация узла из определения workflow.
	Config map[string]any

	// Input — вход узла по правилу предшественников:
	// nil при нуле, выход единственного при одном,
	// []any в порядке рёбер при нескольких.
	Input any
}

// Response — результат выполнения узла.
type Response struct {
	// Output — выход узла. Сохраняется в контекст выполнения и
	// доступен downstream-узлам.
	Output any
}

// NewRequest создаёт новый Request.
func NewRequest(nodeID, workflowID, executionID string, config map[string]any, input any) *Request {
	if config == nil {
		config = make(map[string]any)
	}
	return &Request{
		NodeID:      nodeID,
		WorkflowID:  workflowID,
		ExecutionID: executionID,
		Config:      config,
		Input:       input,
	}
}

// InputMap возвращает вход как map для разрешения dot-path.
// Для не-map входа возвращает nil.
func (r *Request) InputMap() map[string]any {
	if m, ok := r.Input.(map[string]any); ok {
		return m
	}
	return nil
}

// ConfigString извлекает строковое значение из конфига.
func ConfigString(config map[string]any, key string) string {
	if v, ok := config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ConfigMapString извлекает map[string]string из конфига.
func ConfigMapString(config map[string]any, key string) map[string]string {
	if v, ok := config[key]; ok {
		switch m := v.(type) {
		case map[string]string:
			return m
		case map[string]any:
			result := make(map[string]string)
			for k, val := range m {
				if s, ok := val.(string); ok {
					result[k] = s
				}
			}
			return result
		}
	}
	return nil
}
