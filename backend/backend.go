// Package backend provides a uniform client abstraction over local LLM
// serving backends (Ollama, LM Studio, MLX-VLM).
//
// Each backend implementation hides:
// - Wire-format request construction (flat prompt vs chat messages)
// - Streamed response framing (newline-delimited JSON vs Server-Sent Events)
// - Multimodal image embedding rules
// - Backend-specific error mapping
//
// Callers see a single contract: build Options, call Generate or
// GenerateStreaming, receive a Response with consistent field semantics.
package backend

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds a whole request, including a streamed read.
const DefaultRequestTimeout = 5 * time.Minute

// Backend defines the contract all AI backend implementations satisfy.
// Implementations are safe for concurrent use; each call is blocking and
// owns its own decode state.
type Backend interface {
	// Generate sends a prompt and returns the complete response.
	Generate(ctx context.Context, prompt, systemPrompt string, opts Options) (*Response, error)

	// GenerateStreaming sends a prompt and streams the response. onChunk is
	// invoked for every text fragment in arrival order; the returned Response
	// carries the accumulated text and final metadata.
	GenerateStreaming(ctx context.Context, prompt, systemPrompt string, opts Options, onChunk func(string)) (*Response, error)

	// ModelInfo returns details about a model, or nil if the backend has no
	// model info endpoint.
	ModelInfo(ctx context.Context, model string) (*ModelInfo, error)

	// SupportsModelInfo reports whether ModelInfo returns data for this backend.
	SupportsModelInfo() bool

	// Type returns the backend type.
	Type() Type

	// BaseURL returns the resolved base URL.
	BaseURL() string

	// ModelName returns the model this backend was configured with.
	ModelName() string

	// Close releases pooled transport resources.
	Close() error
}

// Options holds generation parameters. Nil fields are omitted from the
// request so each backend applies its own defaults.
type Options struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
	Seed        *int

	// Images holds local file paths or http(s) URLs. How they reach the
	// backend is format-specific: Ollama gets bare base64, LM Studio gets
	// data URLs inside content parts, MLX-VLM gets the paths untouched.
	Images []string
}

// ModelInfo describes a model as reported by the backend (Ollama /api/show).
type ModelInfo struct {
	License    string       `json:"license,omitempty"`
	Modelfile  string       `json:"modelfile,omitempty"`
	Parameters string       `json:"parameters,omitempty"`
	Template   string       `json:"template,omitempty"`
	Details    ModelDetails `json:"details"`
}

// ModelDetails holds the nested details block of a model info response.
type ModelDetails struct {
	Format            string   `json:"format,omitempty"`
	Family            string   `json:"family,omitempty"`
	Families          []string `json:"families,omitempty"`
	ParameterSize     string   `json:"parameter_size,omitempty"`
	QuantizationLevel string   `json:"quantization_level,omitempty"`
}

// Option configures optional backend behavior at construction time.
type Option func(*clientConfig)

// WithLogger sets the logger used for debug output. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithHTTPClient overrides the HTTP client. The caller owns timeout
// configuration when this is used.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// clientConfig holds construction-time settings shared by all backends.
type clientConfig struct {
	logger     *slog.Logger
	httpClient *http.Client
}

func newClientConfig(timeout time.Duration, opts []Option) clientConfig {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	c := clientConfig{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c
}
