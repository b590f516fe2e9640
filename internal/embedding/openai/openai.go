package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder produces embeddings through an OpenAI-compatible API. A custom
// base URL lets it talk to local inference servers exposing the same
// endpoint, which is how a sentence-transformer model is served in
// production.
type Embedder struct {
	client    *openai.Client
	model     string
	timeout   time.Duration
	dimension int
}

// Config configures the embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewEmbedder creates a client from cfg, reading the API key from the
// configured environment variable.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Embedder{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Name identifies the embedder and its model; it tags the built index.
func (e *Embedder) Name() string { return "openai-" + e.model }

// Prepare is a no-op: remote models need no corpus fitting. The dimension
// is learned lazily from the first embedding.
func (e *Embedder) Prepare(corpus []string) error { return nil }

// Dimension returns the vector dimension, 0 before the first Embed.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed requests an embedding for a single text. The call is bounded by
// the configured timeout; timeouts surface as retryable errors to the
// caller.
func (e *Embedder) Embed(text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}
	src := resp.Data[0].Embedding
	vec := make([]float32, len(src))
	for i := range src {
		vec[i] = float32(src[i])
	}
	if e.dimension == 0 {
		e.dimension = len(vec)
	}
	return vec, nil
}
