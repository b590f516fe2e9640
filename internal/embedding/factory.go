package embedding

import (
	"fmt"
	"path/filepath"
	"time"

	"spacebio/internal/config"
	"spacebio/internal/domain"
	"spacebio/internal/embedding/openai"
	"spacebio/internal/embedding/tfidf"
)

// ForIngest constructs the configured embedder for an offline build. A
// tfidf embedder starts unfitted; the ingestion pipeline prepares it over
// the corpus and persists the fitted model beside the index.
func ForIngest(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		return newOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

// ForQuery constructs the query-time embedder. A tfidf embedder is loaded
// from the model persisted at ingestion time so both sides share one
// model identity; a missing model file is a fatal startup error.
func ForQuery(cfg config.EmbedderConfig, embeddingsDir string) (domain.Embedder, error) {
	switch cfg.Type {
	case "tfidf", "":
		emb, err := tfidf.Load(filepath.Join(embeddingsDir, tfidf.ModelFile))
		if err != nil {
			return nil, fmt.Errorf("load tfidf model: %w", err)
		}
		return emb, nil
	case "openai":
		return newOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

func newOpenAI(cfg config.EmbedderConfig) (domain.Embedder, error) {
	if cfg.OpenAI == nil {
		return nil, fmt.Errorf("openai embedder config missing")
	}
	return openai.NewEmbedder(openai.Config{
		BaseURL:   cfg.OpenAI.BaseURL,
		APIKeyEnv: cfg.OpenAI.APIKeyEnv,
		Model:     cfg.OpenAI.Model,
		Timeout:   time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
	})
}
