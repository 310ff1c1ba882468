package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/stagekit/stagekit/tools"
)

// fixedTool returns a canned result or failure.
type fixedTool struct {
	name    string
	output  string
	failure error
}

func (f *fixedTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        f.name,
		Description: "fixed",
		Parameters: []tools.ToolParameter{
			{Name: "city", ParamType: "string", Description: "city name", Required: true},
			{Name: "units", ParamType: "string", Description: "unit system", Required: false},
		},
	}
}

func (f *fixedTool) Execute(ctx context.Context, params map[string]string) (tools.ToolResult, error) {
	if f.failure != nil {
		return tools.FailureResult(f.failure), nil
	}
	return tools.SuccessResult(f.output), nil
}

func newTestServer(t *testing.T, toolset ...tools.Tool) *Server {
	t.Helper()
	registry := tools.NewRegistry()
	for _, tool := range toolset {
		if err := registry.Register(tool); err != nil {
			t.Fatalf("registering tool: %v", err)
		}
	}
	server, err := New(Config{Registry: registry, Name: "test", Version: "0.0.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return server
}

func TestNewRequiresRegistry(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing registry")
	}
}

func TestNewProvidesHTTPHandler(t *testing.T) {
	server := newTestServer(t, &fixedTool{name: "weather", output: "sunny"})
	if server.Handler() == nil {
		t.Error("expected a streamable HTTP handler")
	}
}

func TestCallToolSuccess(t *testing.T) {
	server := newTestServer(t, &fixedTool{name: "weather", output: "Paris: 18°C"})

	result, out, err := server.callTool(context.Background(), "weather", map[string]string{"city": "Paris"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %v", result.Content)
	}
	if out.Output != "Paris: 18°C" {
		t.Errorf("structured output mismatch: %q", out.Output)
	}

	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok || text.Text != "Paris: 18°C" {
		t.Errorf("text content mismatch: %v", result.Content)
	}
}

func TestCallToolFailureIsErrorResult(t *testing.T) {
	server := newTestServer(t, &fixedTool{name: "weather", failure: errors.New("city not found")})

	result, _, err := server.callTool(context.Background(), "weather", map[string]string{"city": "Nowhere"})
	if err != nil {
		t.Fatalf("tool failure must not be a protocol error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError result for tool failure")
	}
}

func TestCallToolUnknown(t *testing.T) {
	server := newTestServer(t)

	result, _, err := server.callTool(context.Background(), "telescope", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError result for unknown tool")
	}
}

func TestInputSchema(t *testing.T) {
	schema := inputSchema((&fixedTool{name: "weather"}).Metadata())

	if schema.Type != "object" {
		t.Errorf("expected object schema, got %q", schema.Type)
	}
	if _, ok := schema.Properties["city"]; !ok {
		t.Error("schema missing city property")
	}
	if len(schema.Required) != 1 || schema.Required[0] != "city" {
		t.Errorf("expected only city required, got %v", schema.Required)
	}
}
