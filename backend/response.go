package backend

import (
	"fmt"
	"strings"
)

// Response is the unified result record all backends normalize into.
// Duration fields are nanoseconds. Pointer fields distinguish "the backend
// did not report this" (nil) from a reported zero; downstream formatting
// depends on that distinction. A Response is never mutated after
// construction.
type Response struct {
	Model string
	Text  string
	Done  bool

	TotalDuration      *int64
	PromptEvalDuration *int64
	PromptEvalCount    *int
	EvalDuration       *int64
	EvalCount          *int
}

const (
	nanosPerSecond      = 1_000_000_000.0
	nanosPerMillisecond = 1_000_000.0
	nanosPerMicrosecond = 1_000.0
)

// TimingInfo formats the timing metadata in the style of Ollama's verbose
// output. Absent metadata reports as unavailable rather than zero.
func (r *Response) TimingInfo() string {
	if r.TotalDuration == nil {
		return "No timing information available"
	}

	var b strings.Builder
	writeDuration(&b, "total duration", *r.TotalDuration)

	if r.PromptEvalCount != nil && *r.PromptEvalCount > 0 {
		fmt.Fprintf(&b, "prompt eval count:    %d token(s)\n", *r.PromptEvalCount)
		if r.PromptEvalDuration != nil && *r.PromptEvalDuration > 0 {
			writeDuration(&b, "prompt eval duration", *r.PromptEvalDuration)
			rate := float64(*r.PromptEvalCount) * nanosPerSecond / float64(*r.PromptEvalDuration)
			fmt.Fprintf(&b, "prompt eval rate:     %.2f tokens/s\n", rate)
		}
	}

	if r.EvalCount != nil && *r.EvalCount > 0 {
		fmt.Fprintf(&b, "eval count:           %d token(s)\n", *r.EvalCount)
		if r.EvalDuration != nil && *r.EvalDuration > 0 {
			writeDuration(&b, "eval duration", *r.EvalDuration)
			rate := float64(*r.EvalCount) * nanosPerSecond / float64(*r.EvalDuration)
			fmt.Fprintf(&b, "eval rate:            %.2f tokens/s\n", rate)
		}
	}

	return b.String()
}

// writeDuration formats nanoseconds into the largest fitting unit.
func writeDuration(b *strings.Builder, label string, nanos int64) {
	switch {
	case float64(nanos) >= nanosPerSecond:
		fmt.Fprintf(b, "%-21s %.4fs\n", label+":", float64(nanos)/nanosPerSecond)
	case float64(nanos) >= nanosPerMillisecond:
		fmt.Fprintf(b, "%-21s %.2fms\n", label+":", float64(nanos)/nanosPerMillisecond)
	case float64(nanos) >= nanosPerMicrosecond:
		fmt.Fprintf(b, "%-21s %.2fµs\n", label+":", float64(nanos)/nanosPerMicrosecond)
	default:
		fmt.Fprintf(b, "%-21s %dns\n", label+":", nanos)
	}
}
