package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
// The same embedder identity must be used for ingestion and querying.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how section text is split into passages.
type ChunkerConfig struct {
	Size int `yaml:"size"`
}

// DataConfig locates the corpus and the persisted search artifacts.
type DataConfig struct {
	TextsDir      string `yaml:"texts_dir"`
	EmbeddingsDir string `yaml:"embeddings_dir"`
	FeedbackPath  string `yaml:"feedback_path"`
}

// IngestConfig configures the offline build.
type IngestConfig struct {
	Workers int `yaml:"workers"`
}

// SearchConfig holds query-time defaults.
type SearchConfig struct {
	DefaultK int `yaml:"default_k"`
	AnswerK  int `yaml:"answer_k"`
}

// SummaryConfig bounds paper summaries in characters.
type SummaryConfig struct {
	MaxLen int `yaml:"max_len"`
	MinLen int `yaml:"min_len"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder EmbedderConfig `yaml:"embedder"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Data     DataConfig     `yaml:"data"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Search   SearchConfig   `yaml:"search"`
	Summary  SummaryConfig  `yaml:"summary"`
	Server   ServerConfig   `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/spacebio/config.yaml.
// If neither exists, it writes defaults to ~/.config/spacebio/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "spacebio", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: "tfidf"},
		Chunker:  ChunkerConfig{Size: 800},
		Data: DataConfig{
			TextsDir:      filepath.Join("data", "texts"),
			EmbeddingsDir: filepath.Join("data", "embeddings"),
			FeedbackPath:  filepath.Join("data", "feedback.json"),
		},
		Ingest:  IngestConfig{Workers: 8},
		Search:  SearchConfig{DefaultK: 5, AnswerK: 10},
		Summary: SummaryConfig{MaxLen: 1000, MinLen: 200},
		Server:  ServerConfig{Addr: ":8000"},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 800
	}
	if cfg.Data.TextsDir == "" {
		cfg.Data.TextsDir = filepath.Join("data", "texts")
	}
	if cfg.Data.EmbeddingsDir == "" {
		cfg.Data.EmbeddingsDir = filepath.Join("data", "embeddings")
	}
	if cfg.Data.FeedbackPath == "" {
		cfg.Data.FeedbackPath = filepath.Join("data", "feedback.json")
	}
	if cfg.Ingest.Workers == 0 {
		cfg.Ingest.Workers = 8
	}
	if cfg.Search.DefaultK == 0 {
		cfg.Search.DefaultK = 5
	}
	if cfg.Search.AnswerK == 0 {
		cfg.Search.AnswerK = 10
	}
	if cfg.Summary.MaxLen == 0 {
		cfg.Summary.MaxLen = 1000
	}
	if cfg.Summary.MinLen == 0 {
		cfg.Summary.MinLen = 200
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
}
