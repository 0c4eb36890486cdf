package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGateway_RecordExecution(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/record" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"signature": "xyz"})
	}))
	defer srv.Close()

	gw := NewGateway(srv.URL)
	ack, err := gw.RecordExecution(context.Background(), "wf1", "ex1", map[string]any{"r": 1}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["workflowId"] != "wf1" || got["executionId"] != "ex1" || got["success"] != true {
		t.Errorf("unexpected request body: %v", got)
	}
	if ack.(map[string]any)["signature"] != "xyz" {
		t.Errorf("unexpected ack: %v", ack)
	}
}

func TestGateway_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gw := NewGateway(srv.URL)
	_, err := gw.RecordExecution(context.Background(), "wf", "ex", nil, false)
	if !errors.Is(err, ErrGatewayCall) {
		t.Errorf("expected ErrGatewayCall, got %v", err)
	}
}

func TestNoop(t *testing.T) {
	ack, err := NewNoop().RecordExecution(context.Background(), "wf", "ex", "data", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ack.(map[string]any)["recorded"] != false {
		t.Errorf("unexpected ack: %v", ack)
	}
}
