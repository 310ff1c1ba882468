package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stagekit/stagekit/backend"
	"github.com/stagekit/stagekit/tools"
)

// scriptedBackend returns canned responses in order.
type scriptedBackend struct {
	responses []string
	calls     int
	prompts   []string
}

func (s *scriptedBackend) Generate(ctx context.Context, prompt, systemPrompt string, opts backend.Options) (*backend.Response, error) {
	s.prompts = append(s.prompts, prompt)
	text := s.responses[len(s.responses)-1]
	if s.calls < len(s.responses) {
		text = s.responses[s.calls]
	}
	s.calls++
	return &backend.Response{Model: "scripted", Text: text, Done: true}, nil
}

func (s *scriptedBackend) GenerateStreaming(ctx context.Context, prompt, systemPrompt string, opts backend.Options, onChunk func(string)) (*backend.Response, error) {
	return s.Generate(ctx, prompt, systemPrompt, opts)
}

func (s *scriptedBackend) ModelInfo(ctx context.Context, model string) (*backend.ModelInfo, error) {
	return nil, nil
}

func (s *scriptedBackend) SupportsModelInfo() bool { return false }
func (s *scriptedBackend) Type() backend.Type      { return backend.Ollama }
func (s *scriptedBackend) BaseURL() string         { return "scripted" }
func (s *scriptedBackend) ModelName() string       { return "scripted" }
func (s *scriptedBackend) Close() error            { return nil }

var _ backend.Backend = (*scriptedBackend)(nil)

// echoTool records invocations and echoes a fixed observation.
type echoTool struct {
	name     string
	output   string
	received []map[string]string
}

func (e *echoTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{Name: e.name, Description: "echo"}
}

func (e *echoTool) Execute(ctx context.Context, params map[string]string) (tools.ToolResult, error) {
	e.received = append(e.received, params)
	return tools.SuccessResult(e.output), nil
}

func TestRunDirectAnswer(t *testing.T) {
	b := &scriptedBackend{responses: []string{"The capital of France is Paris."}}
	registry := tools.NewRegistry()

	result, err := New(b, registry).Run(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Completed || result.Iterations != 1 {
		t.Errorf("expected completion in 1 iteration, got %+v", result)
	}
	if result.Response != "The capital of France is Paris." {
		t.Errorf("unexpected response %q", result.Response)
	}
}

func TestRunToolThenAnswer(t *testing.T) {
	b := &scriptedBackend{responses: []string{
		"<tool_use>\n<tool_name>weather</tool_name>\n<city>Paris</city>\n</tool_use>",
		"It is 18°C in Paris.",
	}}
	weather := &echoTool{name: "weather", output: "Paris: 18°C, Sunny"}
	registry := tools.NewRegistry()
	if err := registry.Register(weather); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := New(b, registry).Run(context.Background(), "Weather in Paris?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Completed || result.Iterations != 2 {
		t.Errorf("expected completion in 2 iterations, got %+v", result)
	}
	if len(weather.received) != 1 || weather.received[0]["city"] != "Paris" {
		t.Errorf("tool did not receive parsed parameters: %v", weather.received)
	}
	// The second prompt must carry the observation from the first iteration.
	if len(b.prompts) != 2 || !strings.Contains(b.prompts[1], "Paris: 18°C, Sunny") {
		t.Errorf("observation missing from follow-up prompt: %q", b.prompts)
	}
}

func TestRunUnknownToolBecomesObservation(t *testing.T) {
	b := &scriptedBackend{responses: []string{
		"<tool_use>\n<tool_name>telescope</tool_name>\n<target>mars</target>\n</tool_use>",
		"I cannot look that up.",
	}}
	registry := tools.NewRegistry()

	result, err := New(b, registry).Run(context.Background(), "Look at Mars")
	if err != nil {
		t.Fatalf("unknown tool must not abort the loop: %v", err)
	}
	if !result.Completed {
		t.Errorf("expected completion, got %+v", result)
	}
	if !strings.Contains(b.prompts[1], "unknown tool 'telescope'") {
		t.Errorf("expected unknown-tool observation in prompt: %q", b.prompts[1])
	}
}

func TestRunMaxIterations(t *testing.T) {
	// The model never stops calling tools.
	b := &scriptedBackend{responses: []string{
		"<tool_use>\n<tool_name>weather</tool_name>\n<city>Paris</city>\n</tool_use>",
	}}
	registry := tools.NewRegistry()
	if err := registry.Register(&echoTool{name: "weather", output: "sunny"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := New(b, registry).WithMaxIterations(3).Run(context.Background(), "loop forever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Completed {
		t.Error("expected incomplete result at iteration limit")
	}
	if result.Iterations != 3 {
		t.Errorf("expected 3 iterations, got %d", result.Iterations)
	}
	if !strings.Contains(result.Response, "maximum number of iterations") {
		t.Errorf("unexpected final response %q", result.Response)
	}
}

func TestRunTraceOutput(t *testing.T) {
	b := &scriptedBackend{responses: []string{"Done."}}
	var trace strings.Builder

	_, err := New(b, tools.NewRegistry()).Trace(&trace).Run(context.Background(), "task")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(trace.String(), "[THINKING]") {
		t.Errorf("expected trace output, got %q", trace.String())
	}
}
