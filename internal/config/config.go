package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// LLM / embedding providers
	LLMProvider     Provider `yaml:"llm_provider"`
	LLMModel        string   `yaml:"llm_model"`
	EmbedProvider   Provider `yaml:"embed_provider"`
	EmbedModel      string   `yaml:"embed_model"`
	EmbedDimension  int      `yaml:"embed_dimension"`
	OllamaHost      string   `yaml:"ollama_host"`
	OpenAIAPIKey    string   `yaml:"openai_api_key"`
	AnthropicAPIKey string   `yaml:"anthropic_api_key"`
	BedrockRegion   string   `yaml:"bedrock_region"`

	// Retrieval tuning
	TopK           int     `yaml:"top_k"`
	MaxDistance    float64 `yaml:"max_distance"`
	TitleThreshold float64 `yaml:"title_threshold"`
	MaxTitleLen    int     `yaml:"max_title_len"`

	// Context assembly
	ContextCharCap  int `yaml:"context_char_cap"`
	FieldCharBudget int `yaml:"field_char_budget"`

	// Streaming
	PauseToken         string        `yaml:"pause_token"`
	PauseAliases       []string      `yaml:"pause_aliases"`
	ListenerStopWindow time.Duration `yaml:"listener_stop_window"`

	// Projects
	DefaultProject   string   `yaml:"default_project"`
	SemanticProjects []string `yaml:"semantic_projects"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// defaults returns the baseline configuration before file/env overlays.
func defaults() Config {
	return Config{
		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "oneiro",
		SurrealDBDatabase:  "journal",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		LLMProvider:    ProviderOllama,
		LLMModel:       "llama3.1",
		EmbedProvider:  ProviderOllama,
		EmbedModel:     "all-minilm:l6-v2",
		EmbedDimension: 384,
		OllamaHost:     "http://localhost:11434",
		BedrockRegion:  "us-east-1",

		TopK:           5,
		MaxDistance:    0.55,
		TitleThreshold: 0.62,
		MaxTitleLen:    120,

		ContextCharCap:  6000,
		FieldCharBudget: 600,

		PauseToken:         "stop",
		PauseAliases:       []string{"esc"},
		ListenerStopWindow: 250 * time.Millisecond,

		DefaultProject: "dreams",

		LogFile:  "/tmp/oneiro.log",
		LogLevel: slog.LevelInfo,
	}
}

// Load reads configuration: defaults first, then the optional YAML config
// file, then environment variables. Env always wins.
func Load() (Config, error) {
	cfg := defaults()

	if path := configFilePath(); path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)

	if cfg.EmbedDimension <= 0 {
		return cfg, fmt.Errorf("embed dimension must be positive, got %d", cfg.EmbedDimension)
	}
	return cfg, nil
}

// PauseTokens returns the pause token plus its configured aliases, the
// full set the cancel listener matches against.
func (c Config) PauseTokens() []string {
	return append([]string{c.PauseToken}, c.PauseAliases...)
}

// SemanticIndexing reports whether a project is opted into vector search.
// An empty opt-in list means every project is.
func (c Config) SemanticIndexing(project string) bool {
	if len(c.SemanticProjects) == 0 {
		return true
	}
	for _, p := range c.SemanticProjects {
		if p == project {
			return true
		}
	}
	return false
}

func configFilePath() string {
	if p := os.Getenv("ONEIRO_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(home, ".config", "oneiro", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setStr("SURREALDB_URL", &cfg.SurrealDBURL)
	setStr("SURREALDB_NAMESPACE", &cfg.SurrealDBNamespace)
	setStr("SURREALDB_DATABASE", &cfg.SurrealDBDatabase)
	setStr("SURREALDB_USER", &cfg.SurrealDBUser)
	setStr("SURREALDB_PASS", &cfg.SurrealDBPass)
	setStr("SURREALDB_AUTH_LEVEL", &cfg.SurrealDBAuthLevel)

	if v := os.Getenv("ONEIRO_LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = Provider(strings.ToLower(v))
	}
	setStr("ONEIRO_LLM_MODEL", &cfg.LLMModel)
	if v := os.Getenv("ONEIRO_EMBED_PROVIDER"); v != "" {
		cfg.EmbedProvider = Provider(strings.ToLower(v))
	}
	setStr("ONEIRO_EMBED_MODEL", &cfg.EmbedModel)
	if v := os.Getenv("ONEIRO_EMBED_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EmbedDimension = n
		}
	}
	setStr("OLLAMA_HOST", &cfg.OllamaHost)
	setStr("OPENAI_API_KEY", &cfg.OpenAIAPIKey)
	setStr("ANTHROPIC_API_KEY", &cfg.AnthropicAPIKey)
	setStr("AWS_REGION", &cfg.BedrockRegion)

	setStr("ONEIRO_PROJECT", &cfg.DefaultProject)
	if v := os.Getenv("ONEIRO_SEMANTIC_PROJECTS"); v != "" {
		cfg.SemanticProjects = splitList(v)
	}
	setStr("ONEIRO_PAUSE_TOKEN", &cfg.PauseToken)
	if v := os.Getenv("ONEIRO_PAUSE_ALIASES"); v != "" {
		cfg.PauseAliases = splitList(v)
	}

	setStr("ONEIRO_LOG_FILE", &cfg.LogFile)
	if v := os.Getenv("ONEIRO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
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
