// Package config loads Starlog configuration from an optional YAML file
// and environment variables. Environment variables win over the file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies an embedding/LLM backend.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// Config holds all configuration values.
type Config struct {
	// SQLite relational store
	DBPath string

	// SurrealDB vector index
	SurrealURL       string
	SurrealNamespace string
	SurrealDatabase  string
	SurrealUser      string
	SurrealPass      string
	SurrealAuthLevel string

	// Embeddings
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int
	OllamaHost     string
	OpenAIAPIKey   string

	// Draft-generation LLM
	LLMProvider Provider
	LLMModel    string

	// Blob store (any S3-compatible endpoint: S3, R2, MinIO)
	BlobBucket   string
	BlobEndpoint string
	BlobRegion   string

	// Vectorize queue
	QueueBuffer      int
	QueueMaxAttempts int
	WorkerBatchSize  int

	// Search
	SearchTopK int

	// Owner identity used when the CLI --user flag is not given
	DefaultUser string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig mirrors the optional YAML config file.
type fileConfig struct {
	DBPath string `yaml:"db_path"`

	Surreal struct {
		URL       string `yaml:"url"`
		Namespace string `yaml:"namespace"`
		Database  string `yaml:"database"`
		User      string `yaml:"user"`
		Pass      string `yaml:"pass"`
		AuthLevel string `yaml:"auth_level"`
	} `yaml:"surreal"`

	Embed struct {
		Provider  string `yaml:"provider"`
		Model     string `yaml:"model"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"embed"`

	LLM struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
	} `yaml:"llm"`

	Blob struct {
		Bucket   string `yaml:"bucket"`
		Endpoint string `yaml:"endpoint"`
		Region   string `yaml:"region"`
	} `yaml:"blob"`

	User     string `yaml:"user"`
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

// Load reads configuration: defaults first, then the YAML config file
// (if present), then environment variables.
func Load() Config {
	cfg := Config{
		DBPath: defaultDBPath(),

		SurrealURL:       "ws://localhost:8000/rpc",
		SurrealNamespace: "starlog",
		SurrealDatabase:  "episodes",
		SurrealUser:      "root",
		SurrealPass:      "root",
		SurrealAuthLevel: "root",

		EmbedProvider:  ProviderOllama,
		EmbedModel:     "all-minilm:l6-v2",
		EmbedDimension: 384,
		OllamaHost:     "http://localhost:11434",

		LLMProvider: ProviderOllama,
		LLMModel:    "llama3.2",

		BlobBucket: "starlog-episode-docs",
		BlobRegion: "auto",

		QueueBuffer:      256,
		QueueMaxAttempts: 5,
		WorkerBatchSize:  10,

		SearchTopK: 5,

		LogFile:  filepath.Join(os.TempDir(), "starlog.log"),
		LogLevel: slog.LevelInfo,
	}

	applyFile(&cfg)
	applyEnv(&cfg)
	return cfg
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "starlog.db"
	}
	return filepath.Join(home, ".starlog", "starlog.db")
}

// configFilePath returns the YAML config location, honoring STARLOG_CONFIG.
func configFilePath() string {
	if p := os.Getenv("STARLOG_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "starlog", "config.yaml")
}

func applyFile(cfg *Config) {
	path := configFilePath()
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// A missing file is the normal case.
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: cannot read config file %s: %v\n", path, err)
		}
		return
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid config file %s: %v\n", path, err)
		return
	}

	setIf(&cfg.DBPath, fc.DBPath)
	setIf(&cfg.SurrealURL, fc.Surreal.URL)
	setIf(&cfg.SurrealNamespace, fc.Surreal.Namespace)
	setIf(&cfg.SurrealDatabase, fc.Surreal.Database)
	setIf(&cfg.SurrealUser, fc.Surreal.User)
	setIf(&cfg.SurrealPass, fc.Surreal.Pass)
	setIf(&cfg.SurrealAuthLevel, fc.Surreal.AuthLevel)
	if fc.Embed.Provider != "" {
		cfg.EmbedProvider = Provider(fc.Embed.Provider)
	}
	setIf(&cfg.EmbedModel, fc.Embed.Model)
	if fc.Embed.Dimension > 0 {
		cfg.EmbedDimension = fc.Embed.Dimension
	}
	if fc.LLM.Provider != "" {
		cfg.LLMProvider = Provider(fc.LLM.Provider)
	}
	setIf(&cfg.LLMModel, fc.LLM.Model)
	setIf(&cfg.BlobBucket, fc.Blob.Bucket)
	setIf(&cfg.BlobEndpoint, fc.Blob.Endpoint)
	setIf(&cfg.BlobRegion, fc.Blob.Region)
	setIf(&cfg.DefaultUser, fc.User)
	setIf(&cfg.LogFile, fc.LogFile)
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLogLevel(fc.LogLevel)
	}
}

func applyEnv(cfg *Config) {
	setEnv(&cfg.DBPath, "STARLOG_DB_PATH")

	setEnv(&cfg.SurrealURL, "SURREALDB_URL")
	setEnv(&cfg.SurrealNamespace, "SURREALDB_NAMESPACE")
	setEnv(&cfg.SurrealDatabase, "SURREALDB_DATABASE")
	setEnv(&cfg.SurrealUser, "SURREALDB_USER")
	setEnv(&cfg.SurrealPass, "SURREALDB_PASS")
	setEnv(&cfg.SurrealAuthLevel, "SURREALDB_AUTH_LEVEL")

	if v := os.Getenv("STARLOG_EMBEDDING_PROVIDER"); v != "" {
		cfg.EmbedProvider = Provider(v)
	}
	setEnv(&cfg.EmbedModel, "STARLOG_EMBEDDING_MODEL")
	setEnvInt(&cfg.EmbedDimension, "STARLOG_EMBEDDING_DIMENSION")
	setEnv(&cfg.OllamaHost, "OLLAMA_HOST")
	setEnv(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")

	if v := os.Getenv("STARLOG_LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = Provider(v)
	}
	setEnv(&cfg.LLMModel, "STARLOG_LLM_MODEL")

	setEnv(&cfg.BlobBucket, "STARLOG_BLOB_BUCKET")
	setEnv(&cfg.BlobEndpoint, "STARLOG_BLOB_ENDPOINT")
	setEnv(&cfg.BlobRegion, "STARLOG_BLOB_REGION")

	setEnvInt(&cfg.QueueBuffer, "STARLOG_QUEUE_BUFFER")
	setEnvInt(&cfg.QueueMaxAttempts, "STARLOG_QUEUE_MAX_ATTEMPTS")
	setEnvInt(&cfg.WorkerBatchSize, "STARLOG_WORKER_BATCH_SIZE")
	setEnvInt(&cfg.SearchTopK, "STARLOG_SEARCH_TOP_K")

	setEnv(&cfg.DefaultUser, "STARLOG_USER")
	setEnv(&cfg.LogFile, "STARLOG_LOG_FILE")
	if v := os.Getenv("STARLOG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
}

func setIf(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func setEnv(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setEnvInt(dst *int, key string) {
	val := os.Getenv(key)
	if val == "" {
		return
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		fmt.Fprintf(os.Stderr, "warning: ignoring %s=%q: not a positive integer\n", key, val)
		return
	}
	*dst = n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
