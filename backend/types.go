package backend

import (
	"fmt"
	"os"
	"strings"
)

// Type identifies a supported AI backend.
type Type int

const (
	// Ollama speaks its native API with newline-delimited JSON streaming.
	Ollama Type = iota
	// LMStudio speaks the OpenAI-compatible chat API with SSE streaming.
	LMStudio
	// MLXVLM speaks the MLX-VLM server API with SSE streaming. Supports
	// vision language models on Apple Silicon.
	MLXVLM
)

// String returns the canonical lowercase name of the backend type.
func (t Type) String() string {
	switch t {
	case Ollama:
		return "ollama"
	case LMStudio:
		return "lmstudio"
	case MLXVLM:
		return "mlx-vlm"
	default:
		return "unknown"
	}
}

// ConfigKey returns the property-style settings key for this backend's base URL.
func (t Type) ConfigKey() string {
	switch t {
	case Ollama:
		return "ollama.base.url"
	case LMStudio:
		return "lmstudio.base.url"
	case MLXVLM:
		return "mlx.vlm.base.url"
	default:
		return ""
	}
}

// EnvKey returns the environment variable for this backend's base URL.
func (t Type) EnvKey() string {
	switch t {
	case Ollama:
		return "OLLAMA_BASE_URL"
	case LMStudio:
		return "LMSTUDIO_BASE_URL"
	case MLXVLM:
		return "MLX_VLM_BASE_URL"
	default:
		return ""
	}
}

// FallbackURL returns the hardcoded default base URL for this backend.
func (t Type) FallbackURL() string {
	switch t {
	case Ollama:
		return "http://localhost:11434"
	case LMStudio:
		return "http://localhost:1234/v1"
	case MLXVLM:
		return "http://localhost:8000"
	default:
		return ""
	}
}

// ConfigLookup resolves a property-style settings key to a value.
// An empty return means the key is unset.
type ConfigLookup func(key string) string

// ResolveBaseURL resolves the base URL for a backend type.
// Order: explicit override, config lookup, environment variable, fallback.
// First non-blank value wins; the fallback guarantees a result.
func (t Type) ResolveBaseURL(override string, lookup ConfigLookup) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if lookup != nil {
		if url := lookup(t.ConfigKey()); strings.TrimSpace(url) != "" {
			return url
		}
	}
	if url := os.Getenv(t.EnvKey()); strings.TrimSpace(url) != "" {
		return url
	}
	return t.FallbackURL()
}

// ParseType parses a backend type from a string (case-insensitive).
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ollama":
		return Ollama, nil
	case "lmstudio", "lm-studio":
		return LMStudio, nil
	case "mlx-vlm", "mlxvlm", "mlx_vlm":
		return MLXVLM, nil
	default:
		return 0, fmt.Errorf("unknown backend type: %q", s)
	}
}
