package engine

import (
	"strings"
	"testing"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

func wfChain() *domain.Workflow {
	return &domain.Workflow{
		ID:   "chain",
		Name: "chain",
		Nodes: []domain.Node{
			{ID: "t", Kind: domain.KindTrigger},
			{ID: "api", Kind: domain.KindAPI, Config: map[string]any{"url": "https://example.com"}},
			{ID: "act", Kind: domain.KindAction, Config: map[string]any{"actionType": "save"}},
		},
		Edges: []domain.Edge{
			{Source: "t", Target: "api"},
			{Source: "api", Target: "act"},
		},
	}
}

func TestValidate_ValidChain(t *testing.T) {
	res := Validate(wfChain())
	if !res.Valid {
		t.Fatalf("expected valid workflow, got errors: %v", res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Errorf("expected empty errors, got %v", res.Errors)
	}
}

func TestValidate_NilWorkflow(t *testing.T) {
	res := Validate(nil)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if len(res.Errors) != 1 {
		t.Fatalf("expected single error, got %v", res.Errors)
	}
}

func TestValidate_EmptyNodes(t *testing.T) {
	res := Validate(&domain.Workflow{ID: "empty"})
	if res.Valid {
		t.Fatal("expected invalid result")
	}

	// Ранний выход: других проверок не выполняется
	if len(res.Errors) != 1 {
		t.Fatalf("expected single error, got %v", res.Errors)
	}
	if !strings.Contains(res.Errors[0], "at least one node") {
		t.Errorf("unexpected error: %s", res.Errors[0])
	}
}

func TestValidate_MissingTrigger(t *testing.T) {
	wf := wfChain()
	wf.Nodes = wf.Nodes[1:]
	wf.Edges = wf.Edges[1:]

	res := Validate(wf)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsError(res.Errors, "trigger") {
		t.Errorf("expected trigger error, got %v", res.Errors)
	}
}

func TestValidate_Cycle(t *testing.T) {
	wf := wfChain()
	wf.Edges = append(wf.Edges, domain.Edge{Source: "act", Target: "t"})

	res := Validate(wf)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsError(res.Errors, "cycle") {
		t.Errorf("expected cycle error, got %v", res.Errors)
	}

	// О цикле сообщается ровно один раз
	count := 0
	for _, e := range res.Errors {
		if strings.Contains(e, "cycle") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one cycle error, got %d", count)
	}
}

func TestValidate_SelfLoop(t *testing.T) {
	wf := wfChain()
	wf.Edges = append(wf.Edges, domain.Edge{Source: "api", Target: "api"})

	res := Validate(wf)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsError(res.Errors, "cycle") {
		t.Errorf("expected cycle error, got %v", res.Errors)
	}
}

func TestValidate_Disconnected(t *testing.T) {
	wf := wfChain()
	wf.Nodes = append(wf.Nodes, domain.Node{
		ID:     "lonely",
		Kind:   domain.KindAI,
		Config: map[string]any{"prompt": "hi", "label": "Lonely AI"},
	})

	res := Validate(wf)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsError(res.Errors, `"Lonely AI" is disconnected`) {
		t.Errorf("expected disconnected error naming the node, got %v", res.Errors)
	}
}

func TestValidate_IsolatedActionAllowed(t *testing.T) {
	// Проверка изолированности не применяется к action-узлам
	wf := wfChain()
	wf.Nodes = append(wf.Nodes, domain.Node{
		ID:     "solo-act",
		Kind:   domain.KindAction,
		Config: map[string]any{"actionType": "notify"},
	})

	res := Validate(wf)
	if !res.Valid {
		t.Fatalf("expected valid workflow, got errors: %v", res.Errors)
	}
}

func TestValidate_MissingConfigFields(t *testing.T) {
	wf := &domain.Workflow{
		ID: "cfg",
		Nodes: []domain.Node{
			{ID: "t", Kind: domain.KindTrigger},
			{ID: "a", Kind: domain.KindAPI},
			{ID: "b", Kind: domain.KindAI},
			{ID: "c", Kind: domain.KindLogic},
		},
		Edges: []domain.Edge{
			{Source: "t", Target: "a"},
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
		},
	}

	res := Validate(wf)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	for _, want := range []string{"missing url", "missing prompt", "missing path"} {
		if !containsError(res.Errors, want) {
			t.Errorf("expected error containing %q, got %v", want, res.Errors)
		}
	}
}

func TestValidate_UnknownEdgeEndpoint(t *testing.T) {
	wf := wfChain()
	wf.Edges = append(wf.Edges, domain.Edge{Source: "api", Target: "ghost"})

	res := Validate(wf)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if !containsError(res.Errors, `unknown node "ghost"`) {
		t.Errorf("expected unknown node error, got %v", res.Errors)
	}
}

func TestValidate_ErrorsAccumulate(t *testing.T) {
	// Несколько независимых проблем — все в одном списке
	wf := &domain.Workflow{
		ID: "multi",
		Nodes: []domain.Node{
			{ID: "a", Kind: domain.KindAPI},
		},
		Edges: []domain.Edge{
			{Source: "a", Target: "ghost"},
		},
	}

	res := Validate(wf)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if len(res.Errors) < 3 {
		t.Errorf("expected trigger, edge and url errors, got %v", res.Errors)
	}
}

func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
