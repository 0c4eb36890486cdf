package runner

import (
	"sync"
	"time"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// NodeSnapshot — состояние узла в рамках прогона.
//
// Аннотации прогона хранятся здесь, а не на узле: определение
// workflow остаётся неизменным, и несколько прогонов одного workflow
// не мешают друг другу.
type NodeSnapshot struct {
	NodeID    string            `json:"nodeId"`
	Status    domain.NodeStatus `json:"status"`
	Output    any               `json:"output,omitempty"`
	Error     string            `json:"error,omitempty"`
	Attempts  int               `json:"attempts,omitempty"`
	StartedAt time.Time         `json:"startedAt,omitzero"`
	EndedAt   time.Time         `json:"endedAt,omitzero"`
}

// RunState — снимок активного прогона для API.
type RunState struct {
	ExecutionID string         `json:"executionId"`
	WorkflowID  string         `json:"workflowId"`
	StartedAt   time.Time      `json:"startedAt"`
	Nodes       []NodeSnapshot `json:"nodes"`
}

// Tracker — side-table состояний узлов активных прогонов.
// Потокобезопасен; по завершении прогон удаляется.
type Tracker struct {
	mu   sync.RWMutex
	runs map[string]*trackedRun
}

type trackedRun struct {
	workflowID string
	startedAt  time.Time
	order      []string
	nodes      map[string]*NodeSnapshot
}

// NewTracker создаёт пустой трекер.
func NewTracker() *Tracker {
	return &Tracker{
		runs: make(map[string]*trackedRun),
	}
}

// Begin регистрирует прогон: все узлы в статусе pending.
func (t *Tracker) Begin(executionID, workflowID string, nodeIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	run := &trackedRun{
		workflowID: workflowID,
		startedAt:  time.Now().UTC(),
		order:      nodeIDs,
		nodes:      make(map[string]*NodeSnapshot, len(nodeIDs)),
	}
	for _, id := range nodeIDs {
		run.nodes[id] = &NodeSnapshot{NodeID: id, Status: domain.NodePending}
	}
	t.runs[executionID] = run
}

// NodeRunning помечает узел как выполняющийся.
func (t *Tracker) NodeRunning(executionID, nodeID string, attempt int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if snap := t.node(executionID, nodeID); snap != nil {
		snap.Status = domain.NodeRunning
		snap.Attempts = attempt
		if snap.StartedAt.IsZero() {
			snap.StartedAt = time.Now().UTC()
		}
	}
}

// NodeSucceeded помечает узел как успешно завершённый.
func (t *Tracker) NodeSucceeded(executionID, nodeID string, output any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if snap := t.node(executionID, nodeID); snap != nil {
		snap.Status = domain.NodeSucceeded
		snap.Output = output
		snap.EndedAt = time.Now().UTC()
	}
}

// NodeFailed помечает узел как завершённый с ошибкой.
func (t *Tracker) NodeFailed(executionID, nodeID, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if snap := t.node(executionID, nodeID); snap != nil {
		snap.Status = domain.NodeFailed
		snap.Error = errMsg
		snap.EndedAt = time.Now().UTC()
	}
}

// Finish удаляет прогон из трекера.
func (t *Tracker) Finish(executionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.runs, executionID)
}

// Snapshot возвращает состояние прогона. Второе значение false, если
// прогон не активен.
func (t *Tracker) Snapshot(executionID string) (RunState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	run, ok := t.runs[executionID]
	if !ok {
		return RunState{}, false
	}
	return t.snapshot(executionID, run), true
}

// Active возвращает состояния всех активных прогонов.
func (t *Tracker) Active() []RunState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	states := make([]RunState, 0, len(t.runs))
	for id, run := range t.runs {
		states = append(states, t.snapshot(id, run))
	}
	return states
}

func (t *Tracker) node(executionID, nodeID string) *NodeSnapshot {
	run, ok := t.runs[executionID]
	if !ok {
		return nil
	}
	return run.nodes[nodeID]
}

func (t *Tracker) snapshot(executionID string, run *trackedRun) RunState {
	nodes := make([]NodeSnapshot, 0, len(run.order))
	for _, id := range run.order {
		if snap, ok := run.nodes[id]; ok {
			nodes = append(nodes, *snap)
		}
	}
	return RunState{
		ExecutionID: executionID,
		WorkflowID:  run.workflowID,
		StartedAt:   run.startedAt,
		Nodes:       nodes,
	}
}
