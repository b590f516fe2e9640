package ingest

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"spacebio/internal/chunker"
	"spacebio/internal/docstore"
	"spacebio/internal/domain"
	"spacebio/internal/embedding/tfidf"
	"spacebio/internal/vectorstore"
)

// ErrEmptyCorpus aborts a build that collected zero passages; an index is
// never written over an empty corpus.
var ErrEmptyCorpus = errors.New("no passages collected from documents")

// SampleLimit bounds the sample passage cache persisted with the index.
const SampleLimit = 200

// defaultWorkers bounds concurrent embedding calls during a build.
const defaultWorkers = 8

// Pipeline drives the offline build: documents -> chunker -> embedder ->
// index, persisting the artifacts on success. It owns exclusive write
// access to the output directory and runs to completion before any query
// traffic exists.
type Pipeline struct {
	docs     *docstore.Store
	window   *chunker.Window
	embedder domain.Embedder
	workers  int
}

func NewPipeline(docs *docstore.Store, window *chunker.Window, embedder domain.Embedder, workers int) *Pipeline {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Pipeline{docs: docs, window: window, embedder: embedder, workers: workers}
}

// Result summarizes a completed build.
type Result struct {
	Documents int
	Skipped   int
	Passages  int
	Dimension int
}

// Run reads every document, chunks and embeds all passages, and persists
// the index, metadata table, and sample cache into outDir. Unreadable
// documents are logged and skipped; a corpus that yields zero passages
// aborts the build with nothing written.
func (p *Pipeline) Run(outDir string) (Result, error) {
	var res Result
	files, err := p.docs.Files()
	if err != nil {
		return res, fmt.Errorf("list documents: %w", err)
	}

	var passages []domain.Passage
	for _, path := range files {
		doc, err := p.docs.LoadFile(path)
		if err != nil {
			log.Printf("skipping document %s: %v", filepath.Base(path), err)
			res.Skipped++
			continue
		}
		res.Documents++
		passages = append(passages, p.window.SplitDocument(doc, docstore.SectionOrder(doc))...)
	}
	if len(passages) == 0 {
		return res, ErrEmptyCorpus
	}
	res.Passages = len(passages)

	texts := make([]string, len(passages))
	for i, ps := range passages {
		texts[i] = ps.Text
	}
	if err := p.embedder.Prepare(texts); err != nil {
		return res, fmt.Errorf("prepare embedder: %w", err)
	}

	vectors, err := p.embedAll(texts)
	if err != nil {
		return res, err
	}

	index := vectorstore.NewFlatIndex(p.embedder.Name())
	for i, vec := range vectors {
		if err := index.Add(vec, passages[i].Meta()); err != nil {
			return res, fmt.Errorf("add passage %d: %w", i, err)
		}
	}
	res.Dimension = index.Dimension()

	samples := texts
	if len(samples) > SampleLimit {
		samples = samples[:SampleLimit]
	}
	if err := index.Save(outDir, samples); err != nil {
		return res, fmt.Errorf("persist index: %w", err)
	}
	// A fitted local model is part of the index identity and is persisted
	// beside it so the server embeds queries with the exact same model.
	if saver, ok := p.embedder.(interface{ Save(string) error }); ok {
		if err := saver.Save(filepath.Join(outDir, tfidf.ModelFile)); err != nil {
			return res, fmt.Errorf("persist embedder model: %w", err)
		}
	}
	return res, nil
}

// embedAll embeds every text with a bounded number of concurrent workers,
// preserving input order. The embedding runtime behind the interface may
// be remote, so calls overlap; the semaphore keeps the fan-out polite.
func (p *Pipeline) embedAll(texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	sem := make(chan struct{}, p.workers)
	errCh := make(chan error, len(texts))
	var wg sync.WaitGroup
	for i := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			vec, err := p.embedder.Embed(texts[idx])
			if err != nil {
				errCh <- fmt.Errorf("embed passage %d: %w", idx, err)
				return
			}
			vectors[idx] = vec
		}(i)
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	return vectors, nil
}
