// Backend factory.
//
// Selects and constructs the client implementation for a backend type.
// There is no fallback between backend types: an unreachable backend is the
// caller's problem to surface, never something to silently retry elsewhere.

package backend

import "time"

// New creates a backend client for the given type. An empty baseURL
// resolves through the standard chain (config key, environment variable,
// hardcoded fallback). A non-positive timeout uses DefaultRequestTimeout.
func New(t Type, baseURL, model string, timeout time.Duration, opts ...Option) (Backend, error) {
	return NewWithLookup(t, baseURL, model, timeout, nil, opts...)
}

// NewWithLookup is New with an explicit config lookup capability for the
// property-style step of base URL resolution.
func NewWithLookup(t Type, baseURL, model string, timeout time.Duration, lookup ConfigLookup, opts ...Option) (Backend, error) {
	url := t.ResolveBaseURL(baseURL, lookup)

	switch t {
	case Ollama:
		return NewOllama(url, model, timeout, opts...), nil
	case LMStudio:
		return NewLMStudio(url, model, timeout, opts...), nil
	case MLXVLM:
		return NewMLXVLM(url, model, timeout, opts...), nil
	default:
		return nil, &Error{Kind: KindUnsupportedBackend, Backend: t}
	}
}
