package nodes

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/inference"
)

// Store — внешнее key/value хранилище для action-узлов типа save.
type Store interface {
	// Save сохраняет значение под ключом, перезаписывая прежнее.
	Save(ctx context.Context, key string, value any) error
}

// Notifier — внешний нотификатор для action-узлов типа notify.
type Notifier interface {
	// Notify отправляет уведомление с payload.
	Notify(ctx context.Context, workflowID, executionID string, payload any) error
}

// Ledger — внешний леджер для action-узлов типа blockchain.
type Ledger interface {
	// RecordExecution записывает итог прогона. Подтверждение
	// возвращается как есть.
	RecordExecution(ctx context.Context, workflowID, executionID string, payload any, success bool) (any, error)
}

// Deps — внешние коллабораторы исполнителей узлов.
//
// Любое поле может быть nil: исполнители деградируют (save/notify
// становятся no-op с тем же выходом, ai симулирует ответ).
type Deps struct {
	Store      Store
	Notifier   Notifier
	Ledger     Ledger
	OpenRouter inference.Provider
	HF         inference.Provider
}

// Registry — реестр исполнителей узлов по типу. Потокобезопасен.
type Registry struct {
	mu        sync.RWMutex
	executors map[domain.NodeKind]Executor
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[domain.NodeKind]Executor),
	}
}

// DefaultRegistry создаёт реестр со всеми пятью типами узлов.
func DefaultRegistry(deps Deps) *Registry {
	r := NewRegistry()

	r.Register(NewTriggerNode())
	r.Register(NewHTTPNode())
	r.Register(NewAINode(deps.OpenRouter, deps.HF))
	r.Register(NewConditionalNode())
	r.Register(NewActionNode(deps.Store, deps.Notifier, deps.Ledger))

	return r
}

// Register регистрирует исполнителя. Существующий тип перезаписывается.
func (r *Registry) Register(e Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[e.Kind()] = e
}

// Get возвращает исполнителя по типу узла.
// Возвращает ErrExecutorNotFound, если тип не зарегистрирован.
func (r *Registry) Get(kind domain.NodeKind) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.executors[kind]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrExecutorNotFound, kind)
	}

	return e, nil
}

// Has проверяет, зарегистрирован ли тип.
func (r *Registry) Has(kind domain.NodeKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.executors[kind]
	return exists
}

// Kinds возвращает отсортированный список зарегистрированных типов.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.executors))
	for k := range r.executors {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return kinds
}
