// Command execution for CLI commands.
//
// Information Hiding:
// - Backend and store construction from merged config + flags
// - Pipeline wiring (agent, MCP server, RAG)
// - Output formatting
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/stagekit/stagekit/agent"
	"github.com/stagekit/stagekit/backend"
	"github.com/stagekit/stagekit/config"
	"github.com/stagekit/stagekit/internal/logger"
	"github.com/stagekit/stagekit/mcpserver"
	"github.com/stagekit/stagekit/rag"
	"github.com/stagekit/stagekit/storage"
	"github.com/stagekit/stagekit/tools"
)

// Options holds CLI execution options. Zero values mean "use the settings
// file / defaults".
type Options struct {
	ConfigPath string
	Backend    string
	Model      string
	BaseURL    string
	Timeout    string
	Verbose    bool
}

// runtime bundles everything a command needs after config merge.
type runtime struct {
	settings config.Settings
	logger   *slog.Logger
}

func newRuntime(opts Options) (*runtime, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	// Flags beat file and env.
	if opts.Backend != "" {
		settings.Backend.Type = opts.Backend
	}
	if opts.Model != "" {
		settings.Backend.Model = opts.Model
	}
	if opts.BaseURL != "" {
		settings.Backend.BaseURL = opts.BaseURL
	}
	if opts.Timeout != "" {
		if _, err := time.ParseDuration(opts.Timeout); err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", opts.Timeout, err)
		}
		settings.Backend.Timeout = opts.Timeout
	}

	return &runtime{
		settings: settings,
		logger:   logger.New(logger.WithDebug(opts.Verbose)),
	}, nil
}

func (rt *runtime) newBackend() (backend.Backend, error) {
	t, err := backend.ParseType(rt.settings.Backend.Type)
	if err != nil {
		return nil, err
	}
	return backend.NewWithLookup(
		t,
		rt.settings.Backend.BaseURL,
		rt.settings.Backend.Model,
		rt.settings.RequestTimeout(backend.DefaultRequestTimeout),
		rt.settings.Lookup,
		backend.WithLogger(rt.logger),
	)
}

func (rt *runtime) generateOptions() backend.Options {
	var opts backend.Options
	if t := rt.settings.Backend.Temperature; t != 0 {
		opts.Temperature = &t
	}
	if m := rt.settings.Backend.MaxTokens; m > 0 {
		opts.MaxTokens = &m
	}
	return opts
}

// newStore opens the configured document store: PostgreSQL with pgvector
// when a DSN is set, SQLite otherwise.
func (rt *runtime) newStore(ctx context.Context, dim int) (storage.DocumentStore, error) {
	if dsn := rt.settings.RAG.PostgresDSN; dsn != "" {
		return storage.OpenPgVector(ctx, dsn, dim)
	}
	return storage.OpenSqlite(rt.settings.RAG.SqlitePath)
}

func (rt *runtime) newEmbedder() (rag.Embedder, error) {
	return rag.NewEmbedder(
		rt.settings.RAG.EmbedProvider,
		rt.settings.RAG.EmbedModel,
		rt.settings.RAG.EmbedBaseURL,
	)
}

// Generate runs a one-shot prompt. With stream, chunks print as they
// arrive; timing info follows either way when verbose.
func Generate(ctx context.Context, prompt, system string, stream bool, opts Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}

	b, err := rt.newBackend()
	if err != nil {
		return renderError(err)
	}
	defer b.Close()

	var resp *backend.Response
	if stream {
		resp, err = b.GenerateStreaming(ctx, prompt, system, rt.generateOptions(), func(chunk string) {
			fmt.Print(chunk)
		})
		fmt.Println()
	} else {
		resp, err = b.Generate(ctx, prompt, system, rt.generateOptions())
		if err == nil {
			fmt.Println(resp.Text)
		}
	}
	if err != nil {
		return renderError(err)
	}

	if opts.Verbose {
		fmt.Println()
		fmt.Println(resp.TimingInfo())
	}
	return nil
}

// RunAgent executes a task through the think-act-observe agent with the
// bundled tool set.
func RunAgent(ctx context.Context, task string, opts Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}

	b, err := rt.newBackend()
	if err != nil {
		return renderError(err)
	}
	defer b.Close()

	registry, err := tools.WithDefaults()
	if err != nil {
		return err
	}

	a := agent.New(b, registry).
		WithMaxIterations(rt.settings.Agent.MaxIterations).
		WithLogger(rt.logger)
	if opts.Verbose {
		a = a.Trace(os.Stderr)
	}

	result, err := a.Run(ctx, task)
	if err != nil {
		return renderError(err)
	}

	fmt.Println(result.Response)
	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "\n(%d iterations, completed=%t)\n", result.Iterations, result.Completed)
	}
	return nil
}

// ServeMCP exposes the tool registry over MCP. Empty httpAddr serves on
// stdio for editor/agent clients; otherwise an HTTP listener is started.
func ServeMCP(ctx context.Context, httpAddr string, opts Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}

	registry, err := tools.WithDefaults()
	if err != nil {
		return err
	}

	srv, err := mcpserver.New(mcpserver.Config{
		Registry: registry,
		Name:     "stagekit",
		Logger:   rt.logger,
	})
	if err != nil {
		return err
	}

	if httpAddr == "" {
		rt.logger.Info("serving MCP on stdio", "tools", len(registry.Names()))
		return srv.ServeStdio(ctx)
	}

	rt.logger.Info("serving MCP over HTTP", "addr", httpAddr, "tools", len(registry.Names()))
	httpServer := &http.Server{Addr: httpAddr, Handler: srv.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Ingest chunks, embeds, and stores every document under dir.
func Ingest(ctx context.Context, dir string, opts Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}

	embedder, err := rt.newEmbedder()
	if err != nil {
		return err
	}

	store, err := rt.newStore(ctx, embedder.Dimension())
	if err != nil {
		return err
	}
	defer store.Close()

	chunker := rag.NewChunker(rt.settings.RAG.ChunkSize, rt.settings.RAG.ChunkOverlap)
	ingestor := rag.NewIngestor(store, embedder, chunker).WithLogger(rt.logger)

	stats, err := ingestor.IngestDir(ctx, dir)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d file(s) (%d chunk(s)), skipped %d already-ingested file(s).\n",
		stats.FilesIngested, stats.ChunksStored, stats.FilesSkipped)

	counts, err := store.CountBySource(ctx)
	if err != nil {
		return err
	}
	for source, count := range counts {
		fmt.Printf("  %s : %d\n", source, count)
	}
	return nil
}

// Search prints the stored chunks most similar to the query.
func Search(ctx context.Context, query string, opts Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}

	embedder, err := rt.newEmbedder()
	if err != nil {
		return err
	}

	store, err := rt.newStore(ctx, embedder.Dimension())
	if err != nil {
		return err
	}
	defer store.Close()

	embedding, err := embedder.Embed(ctx, query)
	if err != nil {
		return err
	}

	chunks, err := store.Search(ctx, embedding, rt.settings.RAG.SearchTopK, 0)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, chunk := range chunks {
		fmt.Printf("[%d] %s (chunk %d, similarity %.3f)\n", i+1, chunk.Source, chunk.ChunkIndex, chunk.Score)
		fmt.Println(preview(chunk.Content, 200))
		fmt.Println()
	}
	return nil
}

// Ask answers a question grounded in the ingested documents.
func Ask(ctx context.Context, question string, opts Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}

	b, err := rt.newBackend()
	if err != nil {
		return renderError(err)
	}
	defer b.Close()

	embedder, err := rt.newEmbedder()
	if err != nil {
		return err
	}

	store, err := rt.newStore(ctx, embedder.Dimension())
	if err != nil {
		return err
	}
	defer store.Close()

	ragAgent := rag.NewAgent(b, store, embedder).
		WithTopK(rt.settings.RAG.SearchTopK).
		WithLogger(rt.logger)

	answer, err := ragAgent.Ask(ctx, question, rt.generateOptions())
	if err != nil {
		return renderError(err)
	}

	fmt.Println(answer.Response)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, chunk := range answer.Sources {
			fmt.Printf("  - %s (similarity %.2f)\n", chunk.Source, chunk.Score)
		}
	}
	return nil
}

func preview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
