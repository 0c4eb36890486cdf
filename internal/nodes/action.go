package nodes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// defaultSaveKey — ключ хранилища по умолчанию для save.
const defaultSaveKey = "workflow_result"

// ActionNode — терминальный action-узел.
//
// Конфигурация:
//
//	{
//	    "actionType": "save",           // save | notify | webhook | blockchain
//	    "destination": "weather_report", // для save
//	    "webhookUrl": "https://..."      // для webhook
//	}
//
// Неизвестный actionType не считается ошибкой: узел возвращает
// identity-эхо {action, input}. Если соответствующий коллаборатор не
// сконфигурирован, save и notify деградируют до no-op с тем же
// выходом.
type ActionNode struct {
	store    Store
	notifier Notifier
	ledger   Ledger
	client   *http.Client
}

// NewActionNode создаёт исполнителя action-узлов.
func NewActionNode(store Store, notifier Notifier, ledger Ledger) *ActionNode {
	return &ActionNode{
		store:    store,
		notifier: notifier,
		ledger:   ledger,
		client:   &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// Kind возвращает тип узла.
func (n *ActionNode) Kind() domain.NodeKind {
	return domain.KindAction
}

// Execute выполняет действие.
func (n *ActionNode) Execute(ctx context.Context, req *Request) (*Response, error) {
	actionType := ConfigString(req.Config, "actionType")

	switch actionType {
	case "save":
		return n.save(ctx, req)
	case "notify":
		return n.notify(ctx, req)
	case "webhook":
		return n.webhook(ctx, req)
	case "blockchain":
		return n.blockchain(ctx, req)
	default:
		return &Response{Output: map[string]any{
			"action": actionType,
			"input":  req.Input,
		}}, nil
	}
}

func (n *ActionNode) save(ctx context.Context, req *Request) (*Response, error) {
	key := ConfigString(req.Config, "destination")
	if key == "" {
		key = defaultSaveKey
	}

	if n.store != nil {
		if err := n.store.Save(ctx, key, req.Input); err != nil {
			return nil, fmt.Errorf("save to store: %w", err)
		}
	}

	return &Response{Output: map[string]any{
		"saved": true,
		"key":   key,
		"data":  req.Input,
	}}, nil
}

func (n *ActionNode) notify(ctx context.Context, req *Request) (*Response, error) {
	if n.notifier != nil {
		if err := n.notifier.Notify(ctx, req.WorkflowID, req.ExecutionID, req.Input); err != nil {
			return nil, fmt.Errorf("notify: %w", err)
		}
	}

	return &Response{Output: map[string]any{
		"notified": true,
		"input":    req.Input,
	}}, nil
}

func (n *ActionNode) webhook(ctx context.Context, req *Request) (*Response, error) {
	url := ConfigString(req.Config, "webhookUrl")
	if url == "" {
		return nil, fmt.Errorf("%w: action: webhook url is required", ErrInvalidConfig)
	}

	payload, err := json.Marshal(req.Input)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	// Статус возвращается как есть: не-2xx сбоем не считается
	return &Response{Output: map[string]any{
		"sent":   true,
		"status": resp.StatusCode,
	}}, nil
}

func (n *ActionNode) blockchain(ctx context.Context, req *Request) (*Response, error) {
	if n.ledger == nil {
		return &Response{Output: map[string]any{
			"blockchain": true,
			"message":    "ledger is not configured",
			"data":       req.Input,
		}}, nil
	}

	ack, err := n.ledger.RecordExecution(ctx, req.WorkflowID, req.ExecutionID, req.Input, true)
	if err != nil {
		return nil, fmt.Errorf("ledger write: %w", err)
	}

	return &Response{Output: map[string]any{
		"blockchain": true,
		"ack":        ack,
		"data":       req.Input,
	}}, nil
}
