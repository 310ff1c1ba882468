package cli

import (
	"errors"
	"fmt"

	"github.com/stagekit/stagekit/backend"
)

// renderError wraps a backend error with a remediation hint so users get an
// actionable next step instead of a bare transport message. Non-backend
// errors pass through unchanged.
func renderError(err error) error {
	var be *backend.Error
	if !errors.As(err, &be) {
		return err
	}

	hint := hintFor(be)
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w\nhint: %s", err, hint)
}

func hintFor(be *backend.Error) string {
	switch be.Kind {
	case backend.KindConnection:
		switch be.Backend {
		case backend.Ollama:
			return fmt.Sprintf("is Ollama running at %s? Start it with 'ollama serve'.", be.Endpoint)
		case backend.LMStudio:
			return fmt.Sprintf("is LM Studio's server running at %s? Enable it in the Developer tab.", be.Endpoint)
		case backend.MLXVLM:
			return fmt.Sprintf("is the MLX-VLM server running at %s? Start it with 'mlx_vlm.server'.", be.Endpoint)
		}
		return fmt.Sprintf("is the backend reachable at %s?", be.Endpoint)
	case backend.KindModelNotFound:
		if be.Backend == backend.Ollama {
			return fmt.Sprintf("model %q is not available; pull it with 'ollama pull %s'.", be.Model, be.Model)
		}
		return fmt.Sprintf("model %q is not loaded on the server.", be.Model)
	case backend.KindImageEncoding:
		return "check that the image paths exist and use a supported format (jpg, png, gif, webp)."
	case backend.KindUnsupportedBackend:
		return "supported backends: ollama, lmstudio, mlx-vlm."
	default:
		return ""
	}
}
