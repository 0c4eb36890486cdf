package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/engine"
)

// ConditionalNode — logic-узел: проверка условия над входом.
//
// Конфигурация:
//
//	{
//	    "path": "weather.main.temp",
//	    "operator": "greater",   // equals | contains | greater | less | exists
//	    "value": "20"
//	}
//
// path разрешается по входу тем же dot-path правилом, что и
// интерполяция. Выход включает вычисленную ветку branch ("true" или
// "false"): downstream-рёбра logic-узла маркируются sourceHandle с
// этими значениями. Ветка информационная — исполнение графа она не
// отсекает.
type ConditionalNode struct{}

// NewConditionalNode создаёт исполнителя logic-узлов.
func NewConditionalNode() *ConditionalNode {
	return &ConditionalNode{}
}

// Kind возвращает тип узла.
func (n *ConditionalNode) Kind() domain.NodeKind {
	return domain.KindLogic
}

// Execute вычисляет условие.
func (n *ConditionalNode) Execute(_ context.Context, req *Request) (*Response, error) {
	path := ConfigString(req.Config, "path")
	if path == "" {
		return nil, fmt.Errorf("%w: logic: path is required", ErrInvalidConfig)
	}

	operator := ConfigString(req.Config, "operator")
	expected := req.Config["value"]

	actual, resolved := engine.Resolve(req.Input, path)

	result := evaluate(operator, actual, resolved, expected)

	branch := "false"
	if result {
		branch = "true"
	}

	return &Response{Output: map[string]any{
		"path":        path,
		"operator":    operator,
		"value":       expected,
		"actualValue": actual,
		"result":      result,
		"branch":      branch,
		"input":       req.Input,
	}}, nil
}

// evaluate применяет оператор. Неизвестный оператор даёт false.
func evaluate(operator string, actual any, resolved bool, expected any) bool {
	switch operator {
	case "equals":
		// Нестрогое сравнение: оба операнда приводятся к строке
		return cast.ToString(actual) == cast.ToString(expected)
	case "contains":
		return strings.Contains(cast.ToString(actual), cast.ToString(expected))
	case "greater":
		a, errA := cast.ToFloat64E(actual)
		b, errB := cast.ToFloat64E(expected)
		return errA == nil && errB == nil && a > b
	case "less":
		a, errA := cast.ToFloat64E(actual)
		b, errB := cast.ToFloat64E(expected)
		return errA == nil && errB == nil && a < b
	case "exists":
		return resolved && actual != nil
	default:
		return false
	}
}
