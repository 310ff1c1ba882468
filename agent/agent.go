// Package agent implements a think-act-observe loop over a tool registry.
//
// Each iteration:
//  1. THINK: send the task plus accumulated context to the model
//  2. ACT: if the response contains a tool call, execute it
//  3. OBSERVE: append the tool result to the context
//
// A response without a tool call is the final answer. The loop stops there
// or at the iteration limit.
//
// Information Hiding:
// - Prompt construction hidden
// - Tool call parsing and dispatch hidden
// - Context accumulation hidden

package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/stagekit/stagekit/backend"
	"github.com/stagekit/stagekit/tools"
)

// DefaultMaxIterations bounds the think-act-observe loop.
const DefaultMaxIterations = 10

// Agent runs tasks against a backend with a set of tools.
type Agent struct {
	backend       backend.Backend
	registry      *tools.Registry
	maxIterations int
	logger        *slog.Logger
	trace         io.Writer
}

// Result is the outcome of running the agent on a task.
type Result struct {
	// Response is the final answer text.
	Response string
	// Iterations is the number of loop iterations used.
	Iterations int
	// Completed reports whether the model produced a final answer before the
	// iteration limit.
	Completed bool
}

func (r Result) String() string {
	return fmt.Sprintf("Result{completed=%t, iterations=%d, response=%q}", r.Completed, r.Iterations, r.Response)
}

// New creates an agent with default settings.
func New(b backend.Backend, registry *tools.Registry) *Agent {
	return &Agent{
		backend:       b,
		registry:      registry,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
	}
}

// WithMaxIterations overrides the iteration limit.
func (a *Agent) WithMaxIterations(n int) *Agent {
	if n > 0 {
		a.maxIterations = n
	}
	return a
}

// WithLogger sets the logger.
func (a *Agent) WithLogger(logger *slog.Logger) *Agent {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// Trace streams a step-by-step account of the loop to w. Nil disables tracing.
func (a *Agent) Trace(w io.Writer) *Agent {
	a.trace = w
	return a
}

// Run executes the think-act-observe loop for a task.
func (a *Agent) Run(ctx context.Context, task string) (Result, error) {
	a.logger.Info("starting agent", "task", task)

	var contextLog strings.Builder
	fmt.Fprintf(&contextLog, "Task: %s\n\n", task)

	systemPrompt := a.buildSystemPrompt()

	for i := 0; i < a.maxIterations; i++ {
		a.tracef("\n%s\nIteration %d\n%s\n", strings.Repeat("=", 60), i+1, strings.Repeat("=", 60))

		prompt := contextLog.String() + "What should we do next?"

		a.tracef("\n[THINKING]\n")
		resp, err := a.backend.Generate(ctx, prompt, systemPrompt, backend.Options{})
		if err != nil {
			return Result{Iterations: i + 1}, fmt.Errorf("model call failed: %w", err)
		}
		a.tracef("Model response:\n%s\n%s\n%s\n", strings.Repeat("-", 60), resp.Text, strings.Repeat("-", 60))

		call := ParseToolCall(resp.Text)
		if call == nil {
			a.logger.Info("agent completed task", "iterations", i+1)
			return Result{Response: resp.Text, Iterations: i + 1, Completed: true}, nil
		}

		a.tracef("\n[ACTING]\nTool call: %s\n", call)
		a.logger.Info("tool call detected", "tool", call.Name, "params", call.Params)

		observation := a.executeTool(ctx, call)

		a.tracef("\n[OBSERVING]\nTool result:\n%s\n%s\n%s\n", strings.Repeat("-", 60), observation, strings.Repeat("-", 60))
		a.logger.Debug("tool result", "tool", call.Name, "result", observation)

		fmt.Fprintf(&contextLog, "Action: Used tool '%s' with parameters %v\n", call.Name, call.Params)
		fmt.Fprintf(&contextLog, "Observation: %s\n\n", observation)
	}

	a.logger.Warn("agent reached max iterations", "max", a.maxIterations)
	return Result{
		Response: fmt.Sprintf(
			"I've reached the maximum number of iterations (%d) without completing the task. "+
				"The task may be too complex or require more steps.", a.maxIterations),
		Iterations: a.maxIterations,
		Completed:  false,
	}, nil
}

// executeTool dispatches a tool call and renders the observation. Tool
// failures and unknown tools become observations the model can react to.
func (a *Agent) executeTool(ctx context.Context, call *ToolCall) string {
	tool, ok := a.registry.Get(call.Name)
	if !ok {
		return fmt.Sprintf("Error: unknown tool '%s'. Available tools: %s",
			call.Name, strings.Join(a.registry.Names(), ", "))
	}

	result, err := tool.Execute(ctx, call.Params)
	if err != nil {
		return fmt.Sprintf("Error: tool '%s' failed: %v", call.Name, err)
	}
	if !result.Success() {
		return fmt.Sprintf("Error: %v", result.Error)
	}
	return result.Output
}

// buildSystemPrompt teaches the model the tool call format and lists the
// available tools.
func (a *Agent) buildSystemPrompt() string {
	return `You are a helpful AI agent that can use tools to answer questions.

` + a.registry.Description() + `

To use a tool, output XML like this:
<tool_use>
<tool_name>weather</tool_name>
<city>Paris</city>
</tool_use>

You can use multiple tools in sequence if needed. For example, to find weather
in a country's capital, first use country_info to find the capital, then use
weather for that city.

When you have enough information to answer the question, respond normally
without any tool tags. Be concise and helpful.

IMPORTANT: Only include ONE tool call per response. After each tool use,
you'll receive the result and can decide what to do next.`
}

func (a *Agent) tracef(format string, args ...any) {
	if a.trace != nil {
		fmt.Fprintf(a.trace, format, args...)
	}
}
