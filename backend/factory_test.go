package backend

import (
	"testing"
	"time"
)

func TestNewDispatchesByType(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("LMSTUDIO_BASE_URL", "")
	t.Setenv("MLX_VLM_BASE_URL", "")

	cases := []struct {
		backendType Type
		wantURL     string
	}{
		{Ollama, "http://localhost:11434"},
		{LMStudio, "http://localhost:1234/v1"},
		{MLXVLM, "http://localhost:8000"},
	}

	for _, tc := range cases {
		b, err := New(tc.backendType, "", "some-model", time.Minute)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.backendType, err)
		}
		if b.Type() != tc.backendType {
			t.Errorf("%s: wrong client type %v", tc.backendType, b.Type())
		}
		if b.BaseURL() != tc.wantURL {
			t.Errorf("%s: expected fallback URL %q, got %q", tc.backendType, tc.wantURL, b.BaseURL())
		}
		if b.ModelName() != "some-model" {
			t.Errorf("%s: model not carried through, got %q", tc.backendType, b.ModelName())
		}
		b.Close()
	}
}

func TestNewWithOverrideURL(t *testing.T) {
	b, err := New(Ollama, "http://gpu-box:11434", "gemma3", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer b.Close()

	if b.BaseURL() != "http://gpu-box:11434" {
		t.Errorf("override URL not honored, got %q", b.BaseURL())
	}
}

func TestNewWithLookup(t *testing.T) {
	lookup := func(key string) string {
		if key == "lmstudio.base.url" {
			return "http://studio:9999/v1"
		}
		return ""
	}

	b, err := NewWithLookup(LMStudio, "", "qwen2.5", time.Minute, lookup)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer b.Close()

	if b.BaseURL() != "http://studio:9999/v1" {
		t.Errorf("config lookup not honored, got %q", b.BaseURL())
	}
}

func TestNewUnsupportedType(t *testing.T) {
	_, err := New(Type(99), "", "m", time.Minute)
	if !IsKind(err, KindUnsupportedBackend) {
		t.Fatalf("expected unsupported backend error, got %v", err)
	}
}
