package domain

import (
	"testing"
	"time"
)

func TestNodeKindValid(t *testing.T) {
	for _, k := range []NodeKind{KindTrigger, KindAPI, KindAI, KindLogic, KindAction} {
		if !k.Valid() {
			t.Errorf("%s must be valid", k)
		}
	}
	if NodeKind("webhook").Valid() {
		t.Error("unknown kind must be invalid")
	}
	if NodeKind("").Valid() {
		t.Error("empty kind must be invalid")
	}
}

func TestNodeLabel(t *testing.T) {
	n := &Node{ID: "n1", Config: map[string]any{"label": "Fetch users"}}
	if got := n.Label(); got != "Fetch users" {
		t.Errorf("expected config label, got %q", got)
	}

	n = &Node{ID: "n1"}
	if got := n.Label(); got != "n1" {
		t.Errorf("expected ID fallback, got %q", got)
	}
}

func TestExecutionFinalize(t *testing.T) {
	exec := NewExecution("wf-1")
	if exec.Status != StatusRunning {
		t.Fatalf("new execution must be running, got %s", exec.Status)
	}
	if exec.ID == "" {
		t.Fatal("execution must get an ID")
	}

	exec.Append(NodeResult{NodeID: "a", Success: true})
	exec.Append(NodeResult{NodeID: "b", Success: true})
	exec.Finalize()

	if exec.Status != StatusCompleted {
		t.Errorf("all nodes succeeded, expected completed, got %s", exec.Status)
	}
	if exec.CompletedAt.IsZero() {
		t.Error("completedAt must be set")
	}
}

func TestExecutionFinalize_PartialFailure(t *testing.T) {
	exec := NewExecution("wf-1")
	exec.Append(NodeResult{NodeID: "a", Success: true})
	exec.Append(NodeResult{NodeID: "b", Success: false, Error: "boom"})
	exec.Finalize()

	if exec.Status != StatusFailed {
		t.Errorf("expected failed, got %s", exec.Status)
	}

	r, ok := exec.ResultFor("b")
	if !ok || r.Error != "boom" {
		t.Errorf("unexpected result for b: %+v", r)
	}
}

func TestRetryPolicyDelay(t *testing.T) {
	tests := []struct {
		name    string
		policy  RetryPolicy
		attempt int
		want    time.Duration
	}{
		{"default delay", RetryPolicy{}, 1, time.Second},
		{"fixed", RetryPolicy{InitialDelayMs: 200}, 3, 200 * time.Millisecond},
		{"exponential first", RetryPolicy{Backoff: "exponential", InitialDelayMs: 100}, 1, 100 * time.Millisecond},
		{"exponential doubles", RetryPolicy{Backoff: "exponential", InitialDelayMs: 100}, 3, 400 * time.Millisecond},
		{"exponential capped", RetryPolicy{Backoff: "exponential", InitialDelayMs: 100, MaxDelayMs: 250}, 5, 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Delay(tt.attempt); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}
