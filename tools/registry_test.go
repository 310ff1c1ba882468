package tools

import (
	"context"
	"strings"
	"testing"
)

// stubTool is a minimal tool for registry tests.
type stubTool struct {
	name   string
	output string
}

func (s *stubTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        s.name,
		Description: "stub",
		Parameters: []ToolParameter{
			{Name: "input", ParamType: "string", Description: "anything", Required: true},
		},
	}
}

func (s *stubTool) Execute(ctx context.Context, params map[string]string) (ToolResult, error) {
	return SuccessResult(s.output), nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&stubTool{name: "echo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tool, ok := registry.Get("echo")
	if !ok || tool == nil {
		t.Fatal("registered tool not found")
	}
	if !registry.Has("echo") {
		t.Error("Has must report registered tool")
	}
	if registry.Has("missing") {
		t.Error("Has must not report unregistered tool")
	}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&stubTool{name: "echo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := registry.Register(&stubTool{name: "echo"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(&stubTool{name: name}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	names := registry.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names not sorted: %v", names)
			break
		}
	}
}

func TestRegistryDescription(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&stubTool{name: "echo"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	desc := registry.Description()
	for _, want := range []string{"Tool: echo", "input (string)", "[required]"} {
		if !strings.Contains(desc, want) {
			t.Errorf("description missing %q:\n%s", want, desc)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	registry, err := WithDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"weather", "country_info"} {
		if !registry.Has(name) {
			t.Errorf("expected default tool %q", name)
		}
	}
}
