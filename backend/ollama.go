// Ollama backend.
//
// Speaks the native API: POST {base}/api/generate with a flat
// prompt/system/options body. Streaming responses are newline-delimited
// JSON, one complete object per line, terminated by an object with
// done:true that carries the timing counters. Only this backend reports
// nanosecond timings, and only it serves /api/show model info.

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// OllamaBackend implements Backend against Ollama's native API.
type OllamaBackend struct {
	httpCore
}

// ollamaRequest is the /api/generate request body.
type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
	Images  []string       `json:"images,omitempty"`
}

// NewOllama creates an Ollama backend client.
func NewOllama(baseURL, model string, timeout time.Duration, opts ...Option) *OllamaBackend {
	return &OllamaBackend{
		httpCore: newHTTPCore(Ollama, baseURL, model, timeout, opts),
	}
}

// Type returns the backend type.
func (b *OllamaBackend) Type() Type { return Ollama }

// SupportsModelInfo reports that Ollama serves /api/show.
func (b *OllamaBackend) SupportsModelInfo() bool { return true }

// Generate sends a prompt and returns the complete response.
func (b *OllamaBackend) Generate(ctx context.Context, prompt, systemPrompt string, opts Options) (*Response, error) {
	req, err := b.buildRequest(prompt, systemPrompt, opts, false)
	if err != nil {
		return nil, err
	}

	url := b.baseURL + "/api/generate"
	resp, err := b.postJSON(ctx, url, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := b.checkStatus(resp, url); err != nil {
		return nil, err
	}

	var wire ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, invalidResponseError(Ollama, url, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	return wire.toResponse(), nil
}

// GenerateStreaming streams a generation, delivering each text fragment to
// onChunk. The returned Response carries the accumulated text plus the
// timing counters from the final done:true object.
func (b *OllamaBackend) GenerateStreaming(ctx context.Context, prompt, systemPrompt string, opts Options, onChunk func(string)) (*Response, error) {
	req, err := b.buildRequest(prompt, systemPrompt, opts, true)
	if err != nil {
		return nil, err
	}

	url := b.baseURL + "/api/generate"
	resp, err := b.postJSON(ctx, url, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := b.checkStatus(resp, url); err != nil {
		return nil, err
	}

	dec := newDecoder(FramingNDJSON, parseOllamaFrame, b.logger)
	result, err := dec.run(resp.Body, onChunk)
	if err != nil {
		return nil, connectionError(Ollama, url, err)
	}
	return finalizeStream(result.last, result.text, b.model), nil
}

// ModelInfo fetches model details from /api/show. Returns nil without error
// when the backend declines the request; model info is advisory.
func (b *OllamaBackend) ModelInfo(ctx context.Context, model string) (*ModelInfo, error) {
	url := b.baseURL + "/api/show"
	resp, err := b.postJSON(ctx, url, map[string]string{"name": model})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b.logger.Debug("model info unavailable", "model", model, "status", resp.StatusCode)
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, invalidResponseError(Ollama, url, resp.StatusCode, fmt.Errorf("decoding model info: %w", err))
	}
	return &info, nil
}

func (b *OllamaBackend) buildRequest(prompt, systemPrompt string, opts Options, stream bool) (*ollamaRequest, error) {
	req := &ollamaRequest{
		Model:   b.model,
		Prompt:  prompt,
		System:  systemPrompt,
		Stream:  stream,
		Options: ollamaOptions(opts),
	}

	images, err := encodeImages(opts.Images)
	if err != nil {
		return nil, imageEncodingError(Ollama, err)
	}
	req.Images = images
	return req, nil
}

// ollamaOptions maps generation parameters onto Ollama's options object.
// Ollama calls the context budget num_ctx rather than max_tokens.
func ollamaOptions(opts Options) map[string]any {
	m := map[string]any{}
	if opts.Temperature != nil {
		m["temperature"] = *opts.Temperature
	}
	if opts.MaxTokens != nil {
		m["num_ctx"] = *opts.MaxTokens
	}
	if opts.TopP != nil {
		m["top_p"] = *opts.TopP
	}
	if opts.Seed != nil {
		m["seed"] = *opts.Seed
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

func parseOllamaFrame(data []byte) (Frame, error) {
	var frame ollamaResponse
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

var _ Backend = (*OllamaBackend)(nil)
