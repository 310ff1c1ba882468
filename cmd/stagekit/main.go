// Package main provides the stagekit CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stagekit/stagekit/cli"
)

var (
	// Global flags
	configPath  string
	backendName string
	model       string
	baseURL     string
	timeout     string
	verbose     bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "stagekit",
		Short: "Agentic AI workshop stages over local LLM backends",
		Long: `stagekit drives local LLM backends (Ollama, LM Studio, MLX-VLM) through
a uniform client, and builds the workshop stages on top of it:

- generate: one-shot and streaming text generation
- agent: a think-act-observe loop with bundled tools
- mcp-serve: the tool registry exposed over Model Context Protocol
- ingest / search / rag: a retrieval-augmented generation pipeline`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Settings file (default stagekit.toml)")
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "", "Backend type (ollama, lmstudio, mlx-vlm)")
	rootCmd.PersistentFlags().StringVarP(&model, "model", "m", "", "Model name")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Backend base URL override")
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "", "Request timeout (e.g. 2m, 30s)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(generateCmd(ctx))
	rootCmd.AddCommand(agentCmd(ctx))
	rootCmd.AddCommand(mcpServeCmd(ctx))
	rootCmd.AddCommand(ingestCmd(ctx))
	rootCmd.AddCommand(searchCmd(ctx))
	rootCmd.AddCommand(ragCmd(ctx))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		ConfigPath: configPath,
		Backend:    backendName,
		Model:      model,
		BaseURL:    baseURL,
		Timeout:    timeout,
		Verbose:    verbose,
	}
}

func generateCmd(ctx context.Context) *cobra.Command {
	var stream bool
	var system string

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate a response for a single prompt",
		Long: `Send one prompt to the configured backend and print the response.

With --stream, chunks print as they arrive. With --verbose, token and
timing statistics follow the response.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Generate(ctx, args[0], system, stream, options())
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "Stream the response as it is generated")
	cmd.Flags().StringVar(&system, "system", "", "System prompt")

	return cmd
}

func agentCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "agent [task]",
		Short: "Run a task through the tool-using agent",
		Long: `Execute a task with the think-act-observe agent. The agent can call the
bundled tools (weather, country_info) and loops until it produces a final
answer or hits the iteration limit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunAgent(ctx, args[0], options())
		},
	}
}

func mcpServeCmd(ctx context.Context) *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "mcp-serve",
		Short: "Expose the tool registry over Model Context Protocol",
		Long: `Serve the bundled tools to MCP clients. Default transport is stdio, for
wiring into editors and agent runtimes. With --http, a streamable HTTP
endpoint is served instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ServeMCP(ctx, httpAddr, options())
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve over HTTP on this address (e.g. :8080) instead of stdio")

	return cmd
}

func ingestCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Chunk, embed, and store documents from a directory",
		Long: `Walk a directory, split each document into overlapping chunks, embed
them, and store the vectors. Files already ingested (same path and content
hash) are skipped, so re-running is cheap.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Ingest(ctx, args[0], options())
		},
	}
}

func searchCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search ingested documents by similarity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Search(ctx, args[0], options())
		},
	}
}

func ragCmd(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rag [question]",
		Short: "Answer a question grounded in ingested documents",
		Long: `Retrieve the chunks most similar to the question and generate an answer
with them as context. Sources are listed after the answer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Ask(ctx, args[0], options())
		},
	}
}
