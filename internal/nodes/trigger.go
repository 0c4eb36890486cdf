package nodes

import (
	"context"
	"time"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// TriggerNode — стартовый узел workflow.
//
// Вход игнорируется, узел всегда завершается успешно и синтезирует
// стартовый выход:
//
//	{
//	    "triggered": true,
//	    "triggerType": "manual",   // если задан в конфигурации
//	    "timestamp": "2026-01-02T15:04:05Z"
//	}
type TriggerNode struct{}

// NewTriggerNode создаёт исполнителя trigger-узлов.
func NewTriggerNode() *TriggerNode {
	return &TriggerNode{}
}

// Kind возвращает тип узла.
func (n *TriggerNode) Kind() domain.NodeKind {
	return domain.KindTrigger
}

// Execute синтезирует стартовый выход.
func (n *TriggerNode) Execute(_ context.Context, req *Request) (*Response, error) {
	output := map[string]any{
		"triggered": true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if t := ConfigString(req.Config, "triggerType"); t != "" {
		output["triggerType"] = t
	}
	return &Response{Output: output}, nil
}
