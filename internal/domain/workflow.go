package domain

import (
	"time"
)

// NodeKind — тип узла workflow.
//
// Закрытое множество из пяти вариантов. Строковые значения совпадают
// с форматом обмена, который использует канвас фронтенда.
type NodeKind string

const (
	// KindTrigger — стартовый узел. Не имеет обязательной конфигурации,
	// всегда выполняется успешно.
	KindTrigger NodeKind = "trigger"

	// KindAPI — HTTP запрос к внешнему API.
	KindAPI NodeKind = "api"

	// KindAI — обращение к inference-провайдеру (OpenRouter, Hugging Face).
	KindAI NodeKind = "ai"

	// KindLogic — условный узел: dot-path + оператор сравнения.
	KindLogic NodeKind = "logic"

	// KindAction — терминальное действие: save, notify, webhook, blockchain.
	KindAction NodeKind = "action"
)

// Valid возвращает true, если kind принадлежит закрытому множеству.
func (k NodeKind) Valid() bool {
	switch k {
	case KindTrigger, KindAPI, KindAI, KindLogic, KindAction:
		return true
	default:
		return false
	}
}

// Position — координаты узла на канвасе.
// Используется только UI: round-trip через сериализацию, на выполнение
// не влияет.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node — узел workflow.
//
// Узел неизменяем во время выполнения: аннотации прогона (running,
// succeeded, output) хранятся в side-table раннера по ключу
// (executionID, nodeID), а не на самом узле — это позволяет безопасно
// запускать один и тот же Workflow в нескольких прогонах одновременно.
type Node struct {
	// ID — уникальный идентификатор узла в рамках workflow.
	ID string `json:"id"`

	// Kind — тип узла.
	Kind NodeKind `json:"kind"`

	// Position — координаты на канвасе (UI-only).
	Position Position `json:"position"`

	// Config — конфигурация, зависящая от типа.
	// Для api: url, method, headers, body
	// Для ai: prompt, provider, modelId, systemPrompt, apiKey
	// Для logic: path, operator, value
	// Для action: actionType, destination, webhookUrl
	Config map[string]any `json:"config,omitempty"`
}

// Label возвращает человекочитаемое имя узла для сообщений об ошибках:
// config["label"], если задан, иначе ID.
func (n *Node) Label() string {
	if n.Config != nil {
		if label, ok := n.Config["label"].(string); ok && label != "" {
			return label
		}
	}
	return n.ID
}

// ConfigString возвращает строковое значение из конфигурации узла.
func (n *Node) ConfigString(key string) string {
	if n.Config == nil {
		return ""
	}
	if s, ok := n.Config[key].(string); ok {
		return s
	}
	return ""
}

// Edge — направленное ребро между узлами.
//
// SourceHandle используется logic-узлами для маркировки веток
// ("true"/"false"). Дубликаты рёбер допустимы и не имеют особого смысла.
type Edge struct {
	ID           string `json:"id,omitempty"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Workflow — определение рабочего процесса: DAG из узлов и рёбер.
//
// Сериализованная форма — формат обмена с канвасом:
// {id, name, nodes: [{id, kind, position, config}], edges: [...]}.
type Workflow struct {
	// ID — идентификатор workflow (строка из формата обмена,
	// например "weather-nft").
	ID string `json:"id"`

	// Name — человекочитаемое имя.
	Name string `json:"name"`

	// Description — описание назначения.
	Description string `json:"description,omitempty"`

	// Nodes — узлы графа. ID уникальны.
	Nodes []Node `json:"nodes"`

	// Edges — рёбра графа.
	Edges []Edge `json:"edges"`

	// IsActive — флаг активности. Неактивные workflows не должны
	// запускаться автоматическими триггерами.
	IsActive bool `json:"isActive,omitempty"`

	// CreatedAt / UpdatedAt — времена жизненного цикла записи.
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// NodeByID возвращает узел по ID (линейный поиск; для частых lookup'ов
// используется engine.Graph).
func (w *Workflow) NodeByID(id string) (*Node, bool) {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i], true
		}
	}
	return nil, false
}

// RetryPolicy — политика повторных попыток выполнения узла.
type RetryPolicy struct {
	// MaxAttempts — максимальное количество попыток (включая первую).
	MaxAttempts int `json:"max_attempts,omitempty"`

	// Backoff — стратегия задержки: "fixed" или "exponential".
	Backoff string `json:"backoff,omitempty"`

	// InitialDelayMs — начальная задержка в миллисекундах.
	InitialDelayMs int `json:"initial_delay_ms,omitempty"`

	// MaxDelayMs — максимальная задержка в миллисекундах.
	MaxDelayMs int `json:"max_delay_ms,omitempty"`
}

// Delay возвращает задержку перед попыткой attempt+1.
// attempt нумеруется с 1 (первая выполненная попытка).
func (p *RetryPolicy) Delay(attempt int) time.Duration {
	initial := p.InitialDelayMs
	if initial <= 0 {
		initial = 1000
	}

	delayMs := initial
	if p.Backoff == "exponential" {
		for i := 1; i < attempt; i++ {
			delayMs *= 2
		}
	}

	if p.MaxDelayMs > 0 && delayMs > p.MaxDelayMs {
		delayMs = p.MaxDelayMs
	}

	return time.Duration(delayMs) * time.Millisecond
}
