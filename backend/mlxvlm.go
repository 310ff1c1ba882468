// MLX-VLM backend.
//
// Speaks the MLX-VLM server API: POST {base}/generate with a flat body.
// Image attachments are passed as file paths or URLs untouched — the
// server reads them itself. Streaming responses are SSE-framed
// {chunk, model} payloads with no completion flag; the stream simply ends.

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// MLXVLMBackend implements Backend against an MLX-VLM server.
type MLXVLMBackend struct {
	httpCore
}

// mlxRequest is the /generate request body.
type mlxRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	System      string   `json:"system,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	Seed        *int     `json:"seed,omitempty"`
	Stream      bool     `json:"stream"`
	Image       []string `json:"image,omitempty"`
}

// NewMLXVLM creates an MLX-VLM backend client.
func NewMLXVLM(baseURL, model string, timeout time.Duration, opts ...Option) *MLXVLMBackend {
	return &MLXVLMBackend{
		httpCore: newHTTPCore(MLXVLM, baseURL, model, timeout, opts),
	}
}

// Type returns the backend type.
func (b *MLXVLMBackend) Type() Type { return MLXVLM }

// SupportsModelInfo reports that MLX-VLM has no model info endpoint.
func (b *MLXVLMBackend) SupportsModelInfo() bool { return false }

// ModelInfo always returns nil for MLX-VLM.
func (b *MLXVLMBackend) ModelInfo(ctx context.Context, model string) (*ModelInfo, error) {
	return nil, nil
}

// Generate sends a generation request and returns the full response.
func (b *MLXVLMBackend) Generate(ctx context.Context, prompt, systemPrompt string, opts Options) (*Response, error) {
	url := b.baseURL + "/generate"
	resp, err := b.postJSON(ctx, url, b.buildRequest(prompt, systemPrompt, opts, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := b.checkStatus(resp, url); err != nil {
		return nil, err
	}

	var wire mlxResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, invalidResponseError(MLXVLM, url, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	return wire.toResponse(), nil
}

// GenerateStreaming streams chunk payloads until the server closes the
// stream, delivering each fragment to onChunk.
func (b *MLXVLMBackend) GenerateStreaming(ctx context.Context, prompt, systemPrompt string, opts Options, onChunk func(string)) (*Response, error) {
	url := b.baseURL + "/generate"
	resp, err := b.postJSON(ctx, url, b.buildRequest(prompt, systemPrompt, opts, true))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := b.checkStatus(resp, url); err != nil {
		return nil, err
	}

	dec := newDecoder(FramingSSE, parseMLXFrame, b.logger)
	result, err := dec.run(resp.Body, onChunk)
	if err != nil {
		return nil, connectionError(MLXVLM, url, err)
	}
	return finalizeStream(result.last, result.text, b.model), nil
}

func (b *MLXVLMBackend) buildRequest(prompt, systemPrompt string, opts Options, stream bool) *mlxRequest {
	var images []string
	if len(opts.Images) > 0 {
		images = append(images, opts.Images...)
	}
	return &mlxRequest{
		Model:       b.model,
		Prompt:      prompt,
		System:      systemPrompt,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		Seed:        opts.Seed,
		Stream:      stream,
		Image:       images,
	}
}

func parseMLXFrame(data []byte) (Frame, error) {
	var frame mlxStreamChunk
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

var _ Backend = (*MLXVLMBackend)(nil)
