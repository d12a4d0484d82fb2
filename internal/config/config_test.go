package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"EVENTQA_STORE", "EVENTQA_SEMANTIC_WEIGHT", "EVENTQA_LEXICAL_WEIGHT", "EVENTQA_TOP_K", "EVENTQA_MIN_SCORE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, StoreSurreal, cfg.Store)
	assert.Equal(t, 0.65, cfg.SemanticWeight)
	assert.Equal(t, 0.35, cfg.LexicalWeight)
	assert.Equal(t, 0.30, cfg.MinScore)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 8*time.Second, cfg.TermsTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EVENTQA_STORE", "Memory")
	t.Setenv("EVENTQA_TOP_K", "7")
	t.Setenv("EVENTQA_SEMANTIC_WEIGHT", "0.5")
	t.Setenv("EVENTQA_TERMS_TIMEOUT", "250ms")
	t.Setenv("EVENTQA_LOG_LEVEL", "debug")
	t.Setenv("EVENTQA_EMBED_DIMENSION", "not-a-number")

	cfg := Load()
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 7, cfg.TopK)
	assert.Equal(t, 0.5, cfg.Weights().Semantic)
	assert.Equal(t, 250*time.Millisecond, cfg.TermsTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 384, cfg.EmbedDimension)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("EVENTQA_LLM_MODEL=from-dotenv\n"), 0o600))
	t.Setenv("EVENTQA_LLM_MODEL", "")
	os.Unsetenv("EVENTQA_LLM_MODEL")

	cfg := Load()
	assert.Equal(t, "from-dotenv", cfg.LLMModel)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store:          StoreMemory,
			EmbedProvider:  ProviderOllama,
			EmbedDimension: 384,
			LLMProvider:    ProviderNone,
			SemanticWeight: 0.65,
			LexicalWeight:  0.35,
			MinScore:       0.3,
			TopK:           5,
			ServerPort:     8080,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"unknown store", func(c *Config) { c.Store = "mongo" }, false},
		{"negative weight", func(c *Config) { c.LexicalWeight = -0.1 }, false},
		{"zero weights", func(c *Config) { c.SemanticWeight, c.LexicalWeight = 0, 0 }, false},
		{"top-k too large", func(c *Config) { c.TopK = 11 }, false},
		{"top-k zero", func(c *Config) { c.TopK = 0 }, false},
		{"zero dimension", func(c *Config) { c.EmbedDimension = 0 }, false},
		{"anthropic without key", func(c *Config) { c.LLMProvider = ProviderAnthropic }, false},
		{"anthropic embeddings", func(c *Config) { c.EmbedProvider = ProviderAnthropic }, false},
		{"min score above one", func(c *Config) { c.MinScore = 2 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var console, jsonOut bytes.Buffer
	logger := SetupLoggerWithWriters(&console, &jsonOut, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("question answered", "results", 3)

	assert.Contains(t, console.String(), "question answered")
	assert.NotContains(t, console.String(), "hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &line))
	assert.Equal(t, "question answered", line["msg"])
	assert.EqualValues(t, 3, line["results"])
}

func TestSetupLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventqa.log")
	logger, cleanup := SetupLogger(Config{LogFile: path, LogLevel: slog.LevelInfo})
	logger.Info("hello")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"app":"eventqa"`)
}
