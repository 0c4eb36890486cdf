package engine

import (
	"testing"
)

func TestInterpolate_Simple(t *testing.T) {
	data := map[string]any{"name": "forge"}
	got := Interpolate("hello {{name}}", data)
	if got != "hello forge" {
		t.Errorf("expected 'hello forge', got %q", got)
	}
}

func TestInterpolate_NestedPath(t *testing.T) {
	data := map[string]any{
		"weather": map[string]any{
			"main": map[string]any{"temp": 21.5},
		},
	}
	got := Interpolate("temp is {{weather.main.temp}}", data)
	if got != "temp is 21.5" {
		t.Errorf("got %q", got)
	}
}

func TestInterpolate_TrimsPath(t *testing.T) {
	data := map[string]any{"x": "y"}
	got := Interpolate("{{ x }}", data)
	if got != "y" {
		t.Errorf("got %q", got)
	}
}

func TestInterpolate_MissingPathEmpty(t *testing.T) {
	data := map[string]any{"a": map[string]any{"b": 1}}

	tests := []struct {
		name     string
		template string
	}{
		{"missing key", "{{nope}}"},
		{"missing nested key", "{{a.nope}}"},
		{"through scalar", "{{a.b.c}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Interpolate(tt.template, data); got != "" {
				t.Errorf("expected empty string, got %q", got)
			}
		})
	}
}

func TestInterpolate_NilData(t *testing.T) {
	got := Interpolate("value: {{x}}", nil)
	if got != "value: " {
		t.Errorf("got %q", got)
	}
}

func TestInterpolate_NilValueEmpty(t *testing.T) {
	data := map[string]any{"x": nil}
	if got := Interpolate("{{x}}", data); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestInterpolate_MultiplePlaceholders(t *testing.T) {
	data := map[string]any{"a": 1, "b": "two"}
	got := Interpolate("{{a}} and {{b}} and {{c}}", data)
	if got != "1 and two and " {
		t.Errorf("got %q", got)
	}
}

func TestInterpolate_ObjectValueJSON(t *testing.T) {
	data := map[string]any{"obj": map[string]any{"k": "v"}}
	got := Interpolate("{{obj}}", data)
	if got != `{"k":"v"}` {
		t.Errorf("got %q", got)
	}
}

func TestInterpolate_NoPlaceholders(t *testing.T) {
	got := Interpolate("plain text", map[string]any{"x": 1})
	if got != "plain text" {
		t.Errorf("got %q", got)
	}
}

func TestResolve(t *testing.T) {
	data := map[string]any{
		"a": map[string]any{"b": "deep"},
		"n": 42,
	}

	if v, ok := Resolve(data, "a.b"); !ok || v != "deep" {
		t.Errorf("a.b: got %v, %v", v, ok)
	}
	if v, ok := Resolve(data, "n"); !ok || v != 42 {
		t.Errorf("n: got %v, %v", v, ok)
	}
	if _, ok := Resolve(data, "a.b.c"); ok {
		t.Error("a.b.c should not resolve")
	}
	if _, ok := Resolve(nil, "x"); ok {
		t.Error("nil data should not resolve")
	}
	if _, ok := Resolve("scalar", "x"); ok {
		t.Error("scalar data should not resolve")
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "s", "s"},
		{"int", 7, "7"},
		{"float", 3.14, "3.14"},
		{"bool", true, "true"},
		{"nil", nil, ""},
		{"map", map[string]any{"a": 1}, `{"a":1}`},
		{"slice", []any{1, "x"}, `[1,"x"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stringify(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
