package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"spacebio/internal/chunker"
	"spacebio/internal/config"
	"spacebio/internal/docstore"
	"spacebio/internal/embedding"
	"spacebio/internal/ingest"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/spacebio/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	emb, err := embedding.ForIngest(cfg.Embedder)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	pipeline := ingest.NewPipeline(
		docstore.New(cfg.Data.TextsDir),
		chunker.NewWindow(cfg.Chunker.Size),
		emb,
		cfg.Ingest.Workers,
	)
	res, err := pipeline.Run(cfg.Data.EmbeddingsDir)
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
	log.Printf("ingested %d documents (%d skipped): %d passages, dimension %d, artifacts in %s",
		res.Documents, res.Skipped, res.Passages, res.Dimension, cfg.Data.EmbeddingsDir)
}
