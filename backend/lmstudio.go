// LM Studio backend.
//
// Speaks the OpenAI-compatible chat API: POST {base}/chat/completions with
// a messages array. Streaming responses are SSE-framed delta chunks ending
// with either a non-null finish_reason or the literal "data: [DONE]" line.
// Multimodal prompts become a content-part list: the text part first, then
// one image_url part per attachment with the image re-encoded as a base64
// data URL. No nanosecond timings and no model info endpoint.

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// LMStudioBackend implements Backend against an OpenAI-compatible server.
type LMStudioBackend struct {
	httpCore
}

// chatRequest is the /chat/completions request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatReqMsg  `json:"messages"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	Seed        *int          `json:"seed,omitempty"`
	Stream      bool          `json:"stream"`
}

// chatReqMsg is one chat message. Content is either a plain string or, for
// multimodal messages, an ordered list of content parts.
type chatReqMsg struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// NewLMStudio creates an LM Studio backend client.
func NewLMStudio(baseURL, model string, timeout time.Duration, opts ...Option) *LMStudioBackend {
	return &LMStudioBackend{
		httpCore: newHTTPCore(LMStudio, baseURL, model, timeout, opts),
	}
}

// Type returns the backend type.
func (b *LMStudioBackend) Type() Type { return LMStudio }

// SupportsModelInfo reports that the OpenAI-compatible API has no model
// info endpoint.
func (b *LMStudioBackend) SupportsModelInfo() bool { return false }

// ModelInfo always returns nil for LM Studio.
func (b *LMStudioBackend) ModelInfo(ctx context.Context, model string) (*ModelInfo, error) {
	return nil, nil
}

// Generate sends a chat completion request and returns the full response.
func (b *LMStudioBackend) Generate(ctx context.Context, prompt, systemPrompt string, opts Options) (*Response, error) {
	req, err := b.buildRequest(prompt, systemPrompt, opts, false)
	if err != nil {
		return nil, err
	}

	url := b.baseURL + "/chat/completions"
	resp, err := b.postJSON(ctx, url, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := b.checkStatus(resp, url); err != nil {
		return nil, err
	}

	var wire chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, invalidResponseError(LMStudio, url, resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	return wire.toResponse(), nil
}

// GenerateStreaming streams delta chunks, delivering each fragment to
// onChunk and returning the accumulated text.
func (b *LMStudioBackend) GenerateStreaming(ctx context.Context, prompt, systemPrompt string, opts Options, onChunk func(string)) (*Response, error) {
	req, err := b.buildRequest(prompt, systemPrompt, opts, true)
	if err != nil {
		return nil, err
	}

	url := b.baseURL + "/chat/completions"
	resp, err := b.postJSON(ctx, url, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := b.checkStatus(resp, url); err != nil {
		return nil, err
	}

	dec := newDecoder(FramingSSE, parseChatFrame, b.logger)
	result, err := dec.run(resp.Body, onChunk)
	if err != nil {
		return nil, connectionError(LMStudio, url, err)
	}
	return finalizeStream(result.last, result.text, b.model), nil
}

// buildRequest assembles the messages array. With image attachments the
// user message content becomes parts: text first, then one image_url part
// per attachment in the order given.
func (b *LMStudioBackend) buildRequest(prompt, systemPrompt string, opts Options, stream bool) (*chatRequest, error) {
	var messages []chatReqMsg
	if systemPrompt != "" {
		messages = append(messages, chatReqMsg{Role: "system", Content: systemPrompt})
	}

	if len(opts.Images) == 0 {
		messages = append(messages, chatReqMsg{Role: "user", Content: prompt})
	} else {
		dataURLs, err := encodeImagesDataURLs(opts.Images)
		if err != nil {
			return nil, imageEncodingError(LMStudio, err)
		}
		parts := make([]contentPart, 0, len(dataURLs)+1)
		parts = append(parts, contentPart{Type: "text", Text: prompt})
		for _, u := range dataURLs {
			parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: u}})
		}
		messages = append(messages, chatReqMsg{Role: "user", Content: parts})
	}

	return &chatRequest{
		Model:       b.model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		Seed:        opts.Seed,
		Stream:      stream,
	}, nil
}

func parseChatFrame(data []byte) (Frame, error) {
	var frame chatResponse
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

var _ Backend = (*LMStudioBackend)(nil)
