// Package config provides application settings loaded from an optional TOML
// file merged with environment variables.
//
// Settings are created via Load() which handles:
// - TOML file parsing (stagekit.toml by default, missing file is fine)
// - Environment variable overrides with validation
// - Default value application
// - Property-style endpoint lookup for backend base URL resolution

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFile is the settings file Load reads when no path is given.
const DefaultFile = "stagekit.toml"

// Settings holds all application configuration.
type Settings struct {
	Backend   BackendConfig     `toml:"backend"`
	Agent     AgentConfig       `toml:"agent"`
	RAG       RAGConfig         `toml:"rag"`
	Endpoints map[string]string `toml:"endpoints"`
}

// BackendConfig holds AI backend selection and generation defaults.
type BackendConfig struct {
	Type        string  `toml:"type"`
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url"`
	Timeout     string  `toml:"timeout"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// AgentConfig holds agent execution configuration.
type AgentConfig struct {
	MaxIterations int `toml:"max_iterations"`
}

// RAGConfig holds ingestion and retrieval configuration.
type RAGConfig struct {
	ChunkSize      int    `toml:"chunk_size"`
	ChunkOverlap   int    `toml:"chunk_overlap"`
	EmbedProvider  string `toml:"embed_provider"`
	EmbedModel     string `toml:"embed_model"`
	EmbedBaseURL   string `toml:"embed_base_url"`
	SqlitePath     string `toml:"sqlite_path"`
	PostgresDSN    string `toml:"postgres_dsn"`
	SearchTopK     int    `toml:"search_top_k"`
}

// Load reads settings from the given TOML file (DefaultFile when path is
// empty) and applies environment variable overrides. A missing file is not
// an error; env and defaults still apply. Returns an error for unparseable
// files or invalid env values.
func Load(path string) (Settings, error) {
	s := defaults()

	if path == "" {
		path = DefaultFile
	}
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := s.applyEnv(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// MustLoad is Load but panics on error. Use this only when configuration
// errors should be fatal.
func MustLoad(path string) Settings {
	s, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return s
}

func defaults() Settings {
	return Settings{
		Backend: BackendConfig{
			Type:        "ollama",
			Model:       "gemma3:4b",
			Timeout:     "5m",
			Temperature: 0.7,
		},
		Agent: AgentConfig{
			MaxIterations: 10,
		},
		RAG: RAGConfig{
			ChunkSize:     500,
			ChunkOverlap:  50,
			EmbedProvider: "ollama",
			EmbedModel:    "nomic-embed-text",
			SqlitePath:    "stagekit.db",
			SearchTopK:    5,
		},
	}
}

// applyEnv overrides file values with STAGEKIT_-prefixed environment
// variables. Blank variables leave the file value in place.
func (s *Settings) applyEnv() error {
	if v := os.Getenv("STAGEKIT_BACKEND"); v != "" {
		s.Backend.Type = v
	}
	if v := os.Getenv("STAGEKIT_MODEL"); v != "" {
		s.Backend.Model = v
	}
	if v := os.Getenv("STAGEKIT_BASE_URL"); v != "" {
		s.Backend.BaseURL = v
	}
	if v := os.Getenv("STAGEKIT_TIMEOUT"); v != "" {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid value for STAGEKIT_TIMEOUT: %q: %w", v, err)
		}
		s.Backend.Timeout = v
	}

	temperature, err := getEnvFloat64("STAGEKIT_TEMPERATURE", s.Backend.Temperature)
	if err != nil {
		return err
	}
	s.Backend.Temperature = temperature

	maxTokens, err := getEnvInt("STAGEKIT_MAX_TOKENS", s.Backend.MaxTokens)
	if err != nil {
		return err
	}
	s.Backend.MaxTokens = maxTokens

	maxIterations, err := getEnvInt("AGENT_MAX_ITERATIONS", s.Agent.MaxIterations)
	if err != nil {
		return err
	}
	s.Agent.MaxIterations = maxIterations

	if v := os.Getenv("RAG_EMBED_PROVIDER"); v != "" {
		s.RAG.EmbedProvider = v
	}
	if v := os.Getenv("RAG_EMBED_MODEL"); v != "" {
		s.RAG.EmbedModel = v
	}
	if v := os.Getenv("RAG_SQLITE_PATH"); v != "" {
		s.RAG.SqlitePath = v
	}
	if v := os.Getenv("RAG_POSTGRES_DSN"); v != "" {
		s.RAG.PostgresDSN = v
	}
	return nil
}

// Lookup resolves a property-style key (e.g. "ollama.base.url") from the
// [endpoints] table. An empty return means the key is unset. Settings
// satisfies the config lookup capability backend URL resolution expects.
func (s *Settings) Lookup(key string) string {
	return s.Endpoints[key]
}

// RequestTimeout parses the configured timeout. Unset or invalid values
// fall back to the given default.
func (s *Settings) RequestTimeout(fallback time.Duration) time.Duration {
	if s.Backend.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(s.Backend.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Environment variable helpers with proper error handling

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}
