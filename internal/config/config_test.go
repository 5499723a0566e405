package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
)

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("STARLOG_DB_PATH", "/tmp/test.db")
	t.Setenv("SURREALDB_URL", "ws://surreal:9000/rpc")
	t.Setenv("STARLOG_EMBEDDING_PROVIDER", "openai")
	t.Setenv("STARLOG_EMBEDDING_DIMENSION", "768")
	t.Setenv("STARLOG_USER", "alice")
	t.Setenv("STARLOG_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()

	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath = %q, want /tmp/test.db", cfg.DBPath)
	}
	if cfg.SurrealURL != "ws://surreal:9000/rpc" {
		t.Errorf("SurrealURL = %q", cfg.SurrealURL)
	}
	if cfg.EmbedProvider != ProviderOpenAI {
		t.Errorf("EmbedProvider = %q, want openai", cfg.EmbedProvider)
	}
	if cfg.EmbedDimension != 768 {
		t.Errorf("EmbedDimension = %d, want 768", cfg.EmbedDimension)
	}
	if cfg.DefaultUser != "alice" {
		t.Errorf("DefaultUser = %q, want alice", cfg.DefaultUser)
	}
}

func TestLoadIgnoresInvalidInt(t *testing.T) {
	t.Setenv("STARLOG_SEARCH_TOP_K", "not-a-number")
	t.Setenv("STARLOG_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	if cfg.SearchTopK != 5 {
		t.Errorf("SearchTopK = %d, want default 5", cfg.SearchTopK)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetupLoggerWithWritersFanout(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("hello", "key", "value")

	if stderr.Len() == 0 {
		t.Fatal("expected text output on stderr writer")
	}
	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("file output is not JSON: %v", err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
}
