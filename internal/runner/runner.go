package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/engine"
	"github.com/0x-Shashi/Forge-Flow/internal/nodes"
	"github.com/0x-Shashi/Forge-Flow/internal/telemetry"
)

const defaultNodeTimeout = 60 * time.Second

// Config — конфигурация оркестратора.
type Config struct {
	// Registry — реестр исполнителей узлов. Обязателен.
	Registry *nodes.Registry

	// Logger — логгер. nil — slog.Default().
	Logger *slog.Logger

	// Tracker — side-table состояний узлов. nil — создаётся свой.
	Tracker *Tracker

	// NodeTimeout — таймаут одного выполнения узла.
	// 0 — defaultNodeTimeout.
	NodeTimeout time.Duration

	// Retry — политика повторов узла. Нулевое значение — без повторов.
	Retry domain.RetryPolicy
}

// Orchestrator — последовательный исполнитель workflow.
type Orchestrator struct {
	registry    *nodes.Registry
	logger      *slog.Logger
	tracker     *Tracker
	nodeTimeout time.Duration
	retry       domain.RetryPolicy
}

// New создаёт оркестратор.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = NewTracker()
	}
	timeout := cfg.NodeTimeout
	if timeout <= 0 {
		timeout = defaultNodeTimeout
	}
	return &Orchestrator{
		registry:    cfg.Registry,
		logger:      logger,
		tracker:     tracker,
		nodeTimeout: timeout,
		retry:       cfg.Retry,
	}
}

// Tracker возвращает side-table активных прогонов.
func (o *Orchestrator) Tracker() *Tracker {
	return o.tracker
}

// Run выполняет workflow и возвращает запись прогона.
//
// Узлы выполняются в топологическом порядке. Вход узла собирается из
// сохранённых выходов предшественников: nil при нуле, единственный
// выход при одном, []any в порядке рёбер при нескольких. Сбой узла
// записывает в контекст nil и не прерывает прогон. Итоговый статус
// completed только если все узлы завершились успешно.
//
// Run никогда не возвращает ошибку: невосстановимые сбои переводят
// запись в failed с частичными результатами.
func (o *Orchestrator) Run(ctx context.Context, wf *domain.Workflow) (exec *domain.Execution) {
	exec = domain.NewExecution(wf.ID)

	logger := telemetry.WithExecutionID(telemetry.WithWorkflowID(o.logger, wf.ID), exec.ID)
	logger.Info("execution started", "nodes", len(wf.Nodes))

	graph := engine.NewGraph(wf)
	order := engine.Order(graph)

	nodeIDs := make([]string, len(order))
	for i, n := range order {
		nodeIDs[i] = n.ID
	}
	o.tracker.Begin(exec.ID, wf.ID, nodeIDs)
	defer o.tracker.Finish(exec.ID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("execution panicked", "panic", r)
			exec.MarkFailed(fmt.Sprintf("internal error: %v", r))
		}
	}()

	// Контекст выполнения: nodeID → выход узла (nil после сбоя)
	outputs := make(map[string]any, len(order))

	for _, node := range order {
		input := gatherInput(graph, node.ID, outputs)

		result := o.runNode(ctx, exec, node, input)
		exec.Append(result)

		if result.Success {
			outputs[node.ID] = result.Output
			o.tracker.NodeSucceeded(exec.ID, node.ID, result.Output)
		} else {
			outputs[node.ID] = nil
			o.tracker.NodeFailed(exec.ID, node.ID, result.Error)
		}
	}

	exec.Finalize()
	logger.Info("execution finished",
		"status", exec.Status,
		"duration_ms", exec.CompletedAt.Sub(exec.StartedAt).Milliseconds())
	return exec
}

// gatherInput собирает вход узла из выходов предшественников.
func gatherInput(graph *engine.Graph, nodeID string, outputs map[string]any) any {
	preds := graph.Predecessors(nodeID)
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return outputs[preds[0]]
	default:
		inputs := make([]any, len(preds))
		for i, p := range preds {
			inputs[i] = outputs[p]
		}
		return inputs
	}
}

// runNode выполняет один узел с таймаутом и повторами.
func (o *Orchestrator) runNode(ctx context.Context, exec *domain.Execution, node *domain.Node, input any) domain.NodeResult {
	logger := telemetry.WithNodeID(o.logger, node.ID)
	started := time.Now()

	result := domain.NodeResult{NodeID: node.ID}

	executor, err := o.registry.Get(node.Kind)
	if err != nil {
		result.Error = err.Error()
		result.DurationMs = time.Since(started).Milliseconds()
		logger.Warn("node skipped", "error", err)
		return result
	}

	attempts := o.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	req := nodes.NewRequest(node.ID, exec.WorkflowID, exec.ID, node.Config, input)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		o.tracker.NodeRunning(exec.ID, node.ID, attempt)

		resp, err := o.executeOnce(ctx, executor, req)
		if err == nil {
			result.Success = true
			result.Output = resp.Output
			result.DurationMs = time.Since(started).Milliseconds()
			logger.Debug("node succeeded", "kind", node.Kind, "attempt", attempt)
			return result
		}

		lastErr = err
		logger.Warn("node attempt failed", "kind", node.Kind, "attempt", attempt, "error", err)

		if attempt < attempts {
			select {
			case <-time.After(o.retry.Delay(attempt)):
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = attempts
			}
		}
	}

	result.Error = lastErr.Error()
	result.DurationMs = time.Since(started).Milliseconds()
	return result
}

// executeOnce выполняет одну попытку с таймаутом узла.
func (o *Orchestrator) executeOnce(ctx context.Context, executor nodes.Executor, req *nodes.Request) (*nodes.Response, error) {
	nodeCtx, cancel := context.WithTimeout(ctx, o.nodeTimeout)
	defer cancel()
	return executor.Execute(nodeCtx, req)
}
