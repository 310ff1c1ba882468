// Package mcpserver exposes the tool registry over the Model Context
// Protocol, so editors and agent runtimes can call the bundled tools.
//
// Every registry entry becomes one MCP tool. The server speaks stdio for
// subprocess clients and streamable HTTP for network clients.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/stagekit/stagekit/tools"
)

// Config configures an MCP server.
type Config struct {
	// Registry supplies the tools to expose.
	Registry *tools.Registry

	// Name and Version identify the server to clients.
	Name    string
	Version string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server bridges the tool registry to MCP clients.
type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// toolOutput is the structured result of one bridged tool call.
type toolOutput struct {
	Output string `json:"output"`
}

// New creates an MCP server exposing every tool in the registry.
func New(c Config) (*Server, error) {
	if c.Registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if c.Name == "" {
		c.Name = "stagekit"
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	s := &Server{config: c}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    c.Name,
			Version: c.Version,
		},
		&mcp.ServerOptions{},
	)

	for _, meta := range c.Registry.List() {
		meta := meta
		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        meta.Name,
			Description: meta.Description,
			InputSchema: inputSchema(meta),
		}, func(ctx context.Context, req *mcp.CallToolRequest, input map[string]string) (*mcp.CallToolResult, toolOutput, error) {
			return s.callTool(ctx, meta.Name, input)
		})
	}

	s.mcpServer = mcpServer
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the streamable HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeStdio runs the server over stdin/stdout until the client disconnects
// or the context is canceled.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.config.Logger.Info("serving MCP over stdio", "tools", s.config.Registry.Names())
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// callTool dispatches one MCP tool call to the registry. Tool failures come
// back as IsError results, not protocol errors.
func (s *Server) callTool(ctx context.Context, name string, params map[string]string) (*mcp.CallToolResult, toolOutput, error) {
	s.config.Logger.Debug("MCP tool call", "tool", name, "params", params)

	tool, ok := s.config.Registry.Get(name)
	if !ok {
		return errorResult(fmt.Sprintf("unknown tool %q", name)), toolOutput{}, nil
	}

	result, err := tool.Execute(ctx, params)
	if err != nil {
		s.config.Logger.Error("tool execution failed", "tool", name, "error", err)
		return errorResult(fmt.Sprintf("tool %q failed: %v", name, err)), toolOutput{}, nil
	}
	if !result.Success() {
		return errorResult(result.Error.Error()), toolOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Output},
		},
	}, toolOutput{Output: result.Output}, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

// inputSchema builds the JSON schema for a tool's parameters. All bundled
// tool parameters are strings; required ones are listed as such.
func inputSchema(meta tools.ToolMetadata) *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(meta.Parameters))
	var required []string
	for _, p := range meta.Parameters {
		properties[p.Name] = &jsonschema.Schema{
			Type:        "string",
			Description: p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}
