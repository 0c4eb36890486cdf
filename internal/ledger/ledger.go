// Package ledger содержит реализации леджер-коллаборатора: запись
// итогов прогонов во внешний блокчейн-шлюз.
//
// Ядро использует единственную операцию RecordExecution и трактует
// подтверждение как непрозрачное значение.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrGatewayCall — вызов шлюза завершился ошибкой.
var ErrGatewayCall = errors.New("ledger gateway call failed")

const (
	defaultGatewayTimeout = 30 * time.Second
	maxAckBody            = 1 * 1024 * 1024 // 1 MB
)

// Gateway — клиент HTTP-шлюза леджера.
//
// Шлюз принимает POST /record с JSON-телом
// {workflowId, executionId, payload, success} и возвращает
// подтверждение записи (например, сигнатуру транзакции).
type Gateway struct {
	baseURL string
	client  *http.Client
}

// NewGateway создаёт клиент шлюза.
func NewGateway(baseURL string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultGatewayTimeout},
	}
}

// recordRequest — тело запроса записи.
type recordRequest struct {
	WorkflowID  string `json:"workflowId"`
	ExecutionID string `json:"executionId"`
	Payload     any    `json:"payload"`
	Success     bool   `json:"success"`
}

// RecordExecution записывает итог прогона в леджер.
func (g *Gateway) RecordExecution(ctx context.Context, workflowID, executionID string, payload any, success bool) (any, error) {
	body, err := json.Marshal(recordRequest{
		WorkflowID:  workflowID,
		ExecutionID: executionID,
		Payload:     payload,
		Success:     success,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/record", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayCall, err)
	}
	defer resp.Body.Close()

	ackBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxAckBody))
	if err != nil {
		return nil, fmt.Errorf("read ack: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: gateway returned %d: %s", ErrGatewayCall, resp.StatusCode, string(ackBytes))
	}

	var ack any
	if err := json.Unmarshal(ackBytes, &ack); err != nil {
		ack = string(ackBytes)
	}
	return ack, nil
}

// Noop — заглушка леджера для окружений без шлюза.
// Возвращает фиксированное подтверждение без внешних вызовов.
type Noop struct{}

// NewNoop создаёт заглушку.
func NewNoop() *Noop {
	return &Noop{}
}

// RecordExecution возвращает подтверждение-заглушку.
func (n *Noop) RecordExecution(_ context.Context, workflowID, executionID string, _ any, success bool) (any, error) {
	return map[string]any{
		"recorded":    false,
		"workflowId":  workflowID,
		"executionId": executionID,
		"success":     success,
	}, nil
}
