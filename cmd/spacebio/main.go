package main

import (
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"spacebio/internal/config"
	"spacebio/internal/docstore"
	"spacebio/internal/embedding"
	"spacebio/internal/feedback"
	"spacebio/internal/service"
	"spacebio/internal/summarizer"
	"spacebio/internal/tui"
	"spacebio/internal/vectorstore"
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

	index, err := vectorstore.Load(cfg.Data.EmbeddingsDir)
	if err != nil {
		log.Fatalf("failed to load index: %v", err)
	}
	samples, err := vectorstore.LoadSamples(cfg.Data.EmbeddingsDir)
	if err != nil {
		log.Fatalf("failed to load sample passages: %v", err)
	}

	emb, err := embedding.ForQuery(cfg.Embedder, cfg.Data.EmbeddingsDir)
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	svc, err := service.New(
		index,
		samples,
		emb,
		docstore.New(cfg.Data.TextsDir),
		summarizer.NewFrequencySummarizer(),
		feedback.NewLog(cfg.Data.FeedbackPath),
		service.Options{
			DefaultK:      cfg.Search.DefaultK,
			AnswerK:       cfg.Search.AnswerK,
			SummaryMaxLen: cfg.Summary.MaxLen,
			SummaryMinLen: cfg.Summary.MinLen,
		},
	)
	if err != nil {
		log.Fatalf("service init failed: %v", err)
	}

	if _, err := tea.NewProgram(tui.New(svc)).Run(); err != nil {
		log.Fatal(err)
	}
}
