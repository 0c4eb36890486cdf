package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
	"github.com/0x-Shashi/Forge-Flow/internal/nodes"
)

// recordingExecutor — исполнитель для тестов: записывает входы и
// возвращает заготовленные ответы по ID узла.
type recordingExecutor struct {
	kind    domain.NodeKind
	outputs map[string]any
	fails   map[string]error
	inputs  map[string]any
	calls   map[string]int
}

func newRecordingExecutor(kind domain.NodeKind) *recordingExecutor {
	return &recordingExecutor{
		kind:    kind,
		outputs: make(map[string]any),
		fails:   make(map[string]error),
		inputs:  make(map[string]any),
		calls:   make(map[string]int),
	}
}

func (e *recordingExecutor) Kind() domain.NodeKind { return e.kind }

func (e *recordingExecutor) Execute(_ context.Context, req *nodes.Request) (*nodes.Response, error) {
	e.inputs[req.NodeID] = req.Input
	e.calls[req.NodeID]++
	if err := e.fails[req.NodeID]; err != nil {
		return nil, err
	}
	return &nodes.Response{Output: e.outputs[req.NodeID]}, nil
}

func testOrchestrator(executors ...nodes.Executor) *Orchestrator {
	registry := nodes.NewRegistry()
	for _, e := range executors {
		registry.Register(e)
	}
	return New(Config{Registry: registry})
}

func TestRun_LinearChain(t *testing.T) {
	wf := &domain.Workflow{
		ID: "chain",
		Nodes: []domain.Node{
			{ID: "a", Kind: domain.KindTrigger},
			{ID: "b", Kind: domain.KindAPI},
			{ID: "c", Kind: domain.KindAction},
		},
		Edges: []domain.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
		},
	}

	trigger := newRecordingExecutor(domain.KindTrigger)
	trigger.outputs["a"] = map[string]any{"triggered": true}
	api := newRecordingExecutor(domain.KindAPI)
	api.outputs["b"] = map[string]any{"status": 200}
	action := newRecordingExecutor(domain.KindAction)
	action.outputs["c"] = map[string]any{"saved": true}

	exec := testOrchestrator(trigger, api, action).Run(context.Background(), wf)

	if exec.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", exec.Status)
	}
	if len(exec.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(exec.Results))
	}

	// Вход узла — выход единственного предшественника
	if trigger.inputs["a"] != nil {
		t.Error("trigger should receive nil input")
	}
	if in, ok := api.inputs["b"].(map[string]any); !ok || in["triggered"] != true {
		t.Errorf("api should receive trigger output, got %v", api.inputs["b"])
	}
	if in, ok := action.inputs["c"].(map[string]any); !ok || in["status"] != 200 {
		t.Errorf("action should receive api output, got %v", action.inputs["c"])
	}

	if exec.ID == "" || exec.WorkflowID != "chain" {
		t.Error("execution identifiers not set")
	}
	if exec.CompletedAt.IsZero() {
		t.Error("completedAt not set")
	}
}

func TestRun_FanInInput(t *testing.T) {
	// a → c, b → c: вход c — []any в порядке рёбер
	wf := &domain.Workflow{
		ID: "fanin",
		Nodes: []domain.Node{
			{ID: "a", Kind: domain.KindTrigger},
			{ID: "b", Kind: domain.KindTrigger},
			{ID: "c", Kind: domain.KindAction},
		},
		Edges: []domain.Edge{
			{Source: "a", Target: "c"},
			{Source: "b", Target: "c"},
		},
	}

	trigger := newRecordingExecutor(domain.KindTrigger)
	trigger.outputs["a"] = "out-a"
	trigger.outputs["b"] = "out-b"
	action := newRecordingExecutor(domain.KindAction)

	exec := testOrchestrator(trigger, action).Run(context.Background(), wf)
	if exec.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", exec.Status)
	}

	in, ok := action.inputs["c"].([]any)
	if !ok {
		t.Fatalf("expected []any input, got %T", action.inputs["c"])
	}
	if len(in) != 2 || in[0] != "out-a" || in[1] != "out-b" {
		t.Errorf("inputs out of edge order: %v", in)
	}
}

func TestRun_FailureIsolated(t *testing.T) {
	// Сбой узла не прерывает прогон: downstream получает nil
	wf := &domain.Workflow{
		ID: "fail",
		Nodes: []domain.Node{
			{ID: "a", Kind: domain.KindTrigger},
			{ID: "b", Kind: domain.KindAPI},
			{ID: "c", Kind: domain.KindAction},
		},
		Edges: []domain.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
		},
	}

	trigger := newRecordingExecutor(domain.KindTrigger)
	trigger.outputs["a"] = "start"
	api := newRecordingExecutor(domain.KindAPI)
	api.fails["b"] = errors.New("connection refused")
	action := newRecordingExecutor(domain.KindAction)
	action.outputs["c"] = "done"

	exec := testOrchestrator(trigger, api, action).Run(context.Background(), wf)

	if exec.Status != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", exec.Status)
	}
	if len(exec.Results) != 3 {
		t.Fatalf("all nodes should still run, got %d results", len(exec.Results))
	}

	failed, _ := exec.ResultFor("b")
	if failed.Success || failed.Error != "connection refused" {
		t.Errorf("unexpected failed result: %+v", failed)
	}

	// Действие выполнилось со входом nil
	if action.calls["c"] != 1 {
		t.Error("downstream node should still execute")
	}
	if action.inputs["c"] != nil {
		t.Errorf("downstream should observe nil, got %v", action.inputs["c"])
	}
	last, _ := exec.ResultFor("c")
	if !last.Success {
		t.Error("downstream success should be recorded")
	}
}

func TestRun_UnknownKindFails(t *testing.T) {
	wf := &domain.Workflow{
		ID: "unknown",
		Nodes: []domain.Node{
			{ID: "a", Kind: "mystery"},
		},
	}

	exec := testOrchestrator().Run(context.Background(), wf)
	if exec.Status != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", exec.Status)
	}
	result, _ := exec.ResultFor("a")
	if result.Success || result.Error == "" {
		t.Errorf("expected failure with error, got %+v", result)
	}
}

func TestRun_Retry(t *testing.T) {
	wf := &domain.Workflow{
		ID: "retry",
		Nodes: []domain.Node{
			{ID: "a", Kind: domain.KindAPI},
		},
	}

	// Первая попытка падает, вторая проходит
	api := &flakyExecutor{failuresLeft: 1, output: "ok"}
	registry := nodes.NewRegistry()
	registry.Register(api)

	orch := New(Config{
		Registry: registry,
		Retry:    domain.RetryPolicy{MaxAttempts: 3, InitialDelayMs: 1},
	})

	exec := orch.Run(context.Background(), wf)
	if exec.Status != domain.StatusCompleted {
		t.Fatalf("expected completed after retry, got %s", exec.Status)
	}
	if api.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", api.calls)
	}
}

func TestRun_RetryExhausted(t *testing.T) {
	wf := &domain.Workflow{
		ID: "retry",
		Nodes: []domain.Node{
			{ID: "a", Kind: domain.KindAPI},
		},
	}

	api := &flakyExecutor{failuresLeft: 10}
	registry := nodes.NewRegistry()
	registry.Register(api)

	orch := New(Config{
		Registry: registry,
		Retry:    domain.RetryPolicy{MaxAttempts: 2, InitialDelayMs: 1},
	})

	exec := orch.Run(context.Background(), wf)
	if exec.Status != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", exec.Status)
	}
	if api.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", api.calls)
	}
}

// flakyExecutor падает первые failuresLeft вызовов.
type flakyExecutor struct {
	failuresLeft int
	output       any
	calls        int
}

func (e *flakyExecutor) Kind() domain.NodeKind { return domain.KindAPI }

func (e *flakyExecutor) Execute(_ context.Context, _ *nodes.Request) (*nodes.Response, error) {
	e.calls++
	if e.failuresLeft > 0 {
		e.failuresLeft--
		return nil, errors.New("flaky")
	}
	return &nodes.Response{Output: e.output}, nil
}

// panicExecutor паникует при выполнении.
type panicExecutor struct{}

func (e *panicExecutor) Kind() domain.NodeKind { return domain.KindAPI }

func (e *panicExecutor) Execute(_ context.Context, _ *nodes.Request) (*nodes.Response, error) {
	panic("boom")
}

func TestRun_PanicRecovered(t *testing.T) {
	wf := &domain.Workflow{
		ID: "panic",
		Nodes: []domain.Node{
			{ID: "a", Kind: domain.KindTrigger},
			{ID: "b", Kind: domain.KindAPI},
		},
		Edges: []domain.Edge{
			{Source: "a", Target: "b"},
		},
	}

	trigger := newRecordingExecutor(domain.KindTrigger)
	trigger.outputs["a"] = "start"
	registry := nodes.NewRegistry()
	registry.Register(trigger)
	registry.Register(&panicExecutor{})

	exec := New(Config{Registry: registry}).Run(context.Background(), wf)

	if exec.Status != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", exec.Status)
	}
	if exec.Error == "" {
		t.Error("expected execution error to be set")
	}
	// Частичные результаты до паники сохранены
	if _, ok := exec.ResultFor("a"); !ok {
		t.Error("partial results should survive a panic")
	}
}

func TestRun_NodeTimeout(t *testing.T) {
	wf := &domain.Workflow{
		ID: "timeout",
		Nodes: []domain.Node{
			{ID: "a", Kind: domain.KindAPI},
		},
	}

	registry := nodes.NewRegistry()
	registry.Register(&slowExecutor{})

	orch := New(Config{Registry: registry, NodeTimeout: 10 * time.Millisecond})
	exec := orch.Run(context.Background(), wf)

	if exec.Status != domain.StatusFailed {
		t.Fatalf("expected failed, got %s", exec.Status)
	}
}

// slowExecutor ждёт отмены контекста.
type slowExecutor struct{}

func (e *slowExecutor) Kind() domain.NodeKind { return domain.KindAPI }

func (e *slowExecutor) Execute(ctx context.Context, _ *nodes.Request) (*nodes.Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return &nodes.Response{}, nil
	}
}

func TestRun_ConditionalScenario(t *testing.T) {
	// Trigger → Logic с отсутствующим path: ветка false, но оба
	// downstream-действия всё равно выполняются
	wf := &domain.Workflow{
		ID: "branching",
		Nodes: []domain.Node{
			{ID: "t", Kind: domain.KindTrigger},
			{ID: "cond", Kind: domain.KindLogic, Config: map[string]any{
				"path": "v", "operator": "equals", "value": "1",
			}},
			{ID: "yes", Kind: domain.KindAction, Config: map[string]any{"actionType": "other"}},
			{ID: "no", Kind: domain.KindAction, Config: map[string]any{"actionType": "other"}},
		},
		Edges: []domain.Edge{
			{Source: "t", Target: "cond"},
			{Source: "cond", Target: "yes", SourceHandle: "true"},
			{Source: "cond", Target: "no", SourceHandle: "false"},
		},
	}

	exec := New(Config{Registry: nodes.DefaultRegistry(nodes.Deps{})}).Run(context.Background(), wf)

	if exec.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s: %+v", exec.Status, exec.Results)
	}
	if len(exec.Results) != 4 {
		t.Fatalf("all reachable nodes run regardless of branch, got %d results", len(exec.Results))
	}

	condResult, _ := exec.ResultFor("cond")
	output := condResult.Output.(map[string]any)
	if output["result"] != false || output["branch"] != "false" {
		t.Errorf("expected false branch, got %v", output)
	}
	if output["actualValue"] != nil {
		t.Errorf("expected nil actualValue, got %v", output["actualValue"])
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	tr.Begin("ex1", "wf1", []string{"a", "b"})

	tr.NodeRunning("ex1", "a", 1)
	tr.NodeSucceeded("ex1", "a", "out")
	tr.NodeFailed("ex1", "b", "boom")

	state, ok := tr.Snapshot("ex1")
	if !ok {
		t.Fatal("expected active run")
	}
	if state.WorkflowID != "wf1" || len(state.Nodes) != 2 {
		t.Fatalf("unexpected state: %+v", state)
	}
	if state.Nodes[0].Status != domain.NodeSucceeded || state.Nodes[0].Output != "out" {
		t.Errorf("unexpected node a: %+v", state.Nodes[0])
	}
	if state.Nodes[1].Status != domain.NodeFailed || state.Nodes[1].Error != "boom" {
		t.Errorf("unexpected node b: %+v", state.Nodes[1])
	}

	if len(tr.Active()) != 1 {
		t.Error("expected one active run")
	}

	tr.Finish("ex1")
	if _, ok := tr.Snapshot("ex1"); ok {
		t.Error("finished run should be removed")
	}
	if len(tr.Active()) != 0 {
		t.Error("expected no active runs")
	}
}
