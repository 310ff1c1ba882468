// Wire-format models for the three backend APIs, plus the pure adapters
// that map each shape onto the unified Response. Fields a format does not
// carry stay nil in the Response — they are never defaulted to zero.

package backend

// ollamaResponse is one Ollama API response object; in streaming mode every
// NDJSON line is one of these, with the timing counters present only on the
// final done:true object.
type ollamaResponse struct {
	Model              string `json:"model"`
	CreatedAt          string `json:"created_at,omitempty"`
	Response           string `json:"response"`
	Done               bool   `json:"done"`
	Context            []int  `json:"context,omitempty"`
	TotalDuration      *int64 `json:"total_duration,omitempty"`
	LoadDuration       *int64 `json:"load_duration,omitempty"`
	PromptEvalCount    *int   `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration *int64 `json:"prompt_eval_duration,omitempty"`
	EvalCount          *int   `json:"eval_count,omitempty"`
	EvalDuration       *int64 `json:"eval_duration,omitempty"`
}

func (r *ollamaResponse) Content() string { return r.Response }
func (r *ollamaResponse) Final() bool     { return r.Done }

func (r *ollamaResponse) toResponse() *Response {
	return &Response{
		Model:              r.Model,
		Text:               r.Response,
		Done:               r.Done,
		TotalDuration:      r.TotalDuration,
		PromptEvalDuration: r.PromptEvalDuration,
		PromptEvalCount:    r.PromptEvalCount,
		EvalDuration:       r.EvalDuration,
		EvalCount:          r.EvalCount,
	}
}

// chatResponse is an OpenAI-compatible chat completion object. Non-streaming
// responses populate choices[].message; stream chunks populate
// choices[].delta and signal completion with a non-null finish_reason.
type chatResponse struct {
	ID      string       `json:"id,omitempty"`
	Object  string       `json:"object,omitempty"`
	Created int64        `json:"created,omitempty"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int          `json:"index"`
	Message      *chatMessage `json:"message,omitempty"`
	Delta        *chatMessage `json:"delta,omitempty"`
	FinishReason *string      `json:"finish_reason"`
}

type chatMessage struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type chatUsage struct {
	PromptTokens     *int `json:"prompt_tokens,omitempty"`
	CompletionTokens *int `json:"completion_tokens,omitempty"`
	TotalTokens      *int `json:"total_tokens,omitempty"`
}

func (r *chatResponse) Content() string {
	if len(r.Choices) == 0 {
		return ""
	}
	choice := r.Choices[0]
	if choice.Message != nil {
		return choice.Message.Content
	}
	if choice.Delta != nil {
		return choice.Delta.Content
	}
	return ""
}

func (r *chatResponse) Final() bool {
	if len(r.Choices) == 0 {
		return true
	}
	return r.Choices[0].FinishReason != nil
}

func (r *chatResponse) toResponse() *Response {
	resp := &Response{
		Model: r.Model,
		Text:  r.Content(),
		Done:  r.Final(),
	}
	// The OpenAI-compatible format reports token counts but no nanosecond
	// timings; durations stay absent.
	if r.Usage != nil {
		resp.PromptEvalCount = r.Usage.PromptTokens
		resp.EvalCount = r.Usage.CompletionTokens
	}
	return resp
}

// mlxResponse is a complete (non-streaming) MLX-VLM generation response.
type mlxResponse struct {
	Model string    `json:"model"`
	Text  string    `json:"text"`
	Usage *mlxUsage `json:"usage,omitempty"`
}

type mlxUsage struct {
	InputTokens   *int     `json:"input_tokens,omitempty"`
	OutputTokens  *int     `json:"output_tokens,omitempty"`
	TotalTokens   *int     `json:"total_tokens,omitempty"`
	PromptTPS     *float64 `json:"prompt_tps,omitempty"`
	GenerationTPS *float64 `json:"generation_tps,omitempty"`
	PeakMemory    *float64 `json:"peak_memory,omitempty"`
}

func (r *mlxResponse) Content() string { return r.Text }

// Final is always true: MLX-VLM only sends this shape for completed requests.
func (r *mlxResponse) Final() bool { return true }

func (r *mlxResponse) toResponse() *Response {
	resp := &Response{
		Model: r.Model,
		Text:  r.Text,
		Done:  true,
	}
	if r.Usage != nil {
		resp.PromptEvalCount = r.Usage.InputTokens
		resp.EvalCount = r.Usage.OutputTokens
	}
	return resp
}

// mlxStreamChunk is one MLX-VLM SSE payload. The stream carries no explicit
// completion flag; it simply ends.
type mlxStreamChunk struct {
	Chunk string `json:"chunk"`
	Model string `json:"model,omitempty"`
}

func (c *mlxStreamChunk) Content() string { return c.Chunk }
func (c *mlxStreamChunk) Final() bool     { return false }

// finalizeStream builds the unified response for a completed stream from the
// accumulated text and the last successfully parsed frame. Metadata the
// frame's format does not carry stays absent.
func finalizeStream(last Frame, text, fallbackModel string) *Response {
	resp := &Response{
		Model: fallbackModel,
		Text:  text,
		Done:  true,
	}

	switch f := last.(type) {
	case *ollamaResponse:
		if f.Model != "" {
			resp.Model = f.Model
		}
		resp.TotalDuration = f.TotalDuration
		resp.PromptEvalDuration = f.PromptEvalDuration
		resp.PromptEvalCount = f.PromptEvalCount
		resp.EvalDuration = f.EvalDuration
		resp.EvalCount = f.EvalCount
	case *chatResponse:
		if f.Model != "" {
			resp.Model = f.Model
		}
		if f.Usage != nil {
			resp.PromptEvalCount = f.Usage.PromptTokens
			resp.EvalCount = f.Usage.CompletionTokens
		}
	case *mlxStreamChunk:
		if f.Model != "" {
			resp.Model = f.Model
		}
	}

	return resp
}
