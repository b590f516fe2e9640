package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"spacebio/internal/docstore"
	"spacebio/internal/domain"
	"spacebio/internal/feedback"
	"spacebio/internal/polarity"
	"spacebio/internal/vectorstore"
	"spacebio/internal/verdict"
)

// ErrEmptyQuery rejects blank query text as a client error.
var ErrEmptyQuery = errors.New("empty query")

// SummaryError is the fixed summary substituted when summarization fails.
// The failure never propagates past this boundary.
const SummaryError = "Error: Could not generate summary."

// Options carries the query-time tunables.
type Options struct {
	DefaultK      int
	AnswerK       int
	SummaryMaxLen int
	SummaryMinLen int
}

// QAService answers queries over a loaded, read-only index. It is
// constructed once at startup and shared by all request handlers; the
// index and metadata need no locking, the embedder is serialized because
// local inference runtimes are not assumed reentrant.
type QAService struct {
	index      *vectorstore.FlatIndex
	samples    []string
	embedder   domain.Embedder
	docs       *docstore.Store
	summarizer domain.Summarizer
	feedback   *feedback.Log
	opts       Options

	embedMu sync.Mutex
}

// New wires the service. The embedder identity must match the model the
// index was built with; mixing models across build and query silently
// breaks retrieval, so a mismatch refuses to start.
func New(index *vectorstore.FlatIndex, samples []string, embedder domain.Embedder, docs *docstore.Store, sum domain.Summarizer, fb *feedback.Log, opts Options) (*QAService, error) {
	if index.Model() != "" && index.Model() != embedder.Name() {
		return nil, fmt.Errorf("index was built with embedder %q, configured embedder is %q", index.Model(), embedder.Name())
	}
	if opts.DefaultK <= 0 {
		opts.DefaultK = 5
	}
	if opts.AnswerK <= 0 {
		opts.AnswerK = 10
	}
	return &QAService{
		index:      index,
		samples:    samples,
		embedder:   embedder,
		docs:       docs,
		summarizer: sum,
		feedback:   fb,
		opts:       opts,
	}, nil
}

// DefaultK returns the default result count for plain search.
func (s *QAService) DefaultK() int { return s.opts.DefaultK }

// AnswerK returns the default retrieval depth for question answering.
func (s *QAService) AnswerK() int { return s.opts.AnswerK }

// Search embeds the query and returns the k nearest passages with
// snippets attached where the sample cache covers them.
func (s *QAService) Search(query string, k int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	vec, err := s.embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := s.index.Search(vec, k)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Snippet = s.snippet(results[i].Index)
	}
	return results, nil
}

// AnswerQuestion retrieves k passages, classifies each snippet's
// direction of effect, aggregates the labels into a verdict, and renders
// the templated answer with a bounded evidence list. Zero retrieved
// passages short-circuit to Insufficient evidence.
func (s *QAService) AnswerQuestion(query string, k int) (domain.Answer, error) {
	results, err := s.Search(query, k)
	if err != nil {
		return domain.Answer{}, err
	}
	if len(results) == 0 {
		return domain.Answer{
			Query:    query,
			Answer:   verdict.Compose(domain.VerdictInsufficient, domain.Unclear),
			Verdict:  domain.VerdictInsufficient,
			Evidence: []domain.EvidenceCard{},
		}, nil
	}

	labels := make([]domain.Polarity, 0, len(results))
	cards := make([]domain.EvidenceCard, 0, len(results))
	for _, r := range results {
		labels = append(labels, polarity.Classify(r.Snippet))
		cards = append(cards, domain.EvidenceCard{
			PaperID: r.Meta.PaperID,
			Title:   r.Meta.Title,
			Section: r.Meta.Section,
			Snippet: r.Snippet,
			Link:    s.docs.ResolveLink(r.Meta.PaperID),
		})
	}
	agg := verdict.Aggregate(labels)
	return domain.Answer{
		Query:      query,
		Answer:     verdict.Compose(agg.Verdict, agg.Primary),
		Verdict:    agg.Verdict,
		Confidence: verdict.Confidence(agg.PrimaryFraction),
		Evidence:   verdict.LimitEvidence(cards, verdict.EvidenceLimit),
	}, nil
}

// CorpusStats summarizes the loaded corpus: total passages and per-section
// counts, with empty section names bucketed as "unknown".
func (s *QAService) CorpusStats() domain.CorpusStats {
	bySection := make(map[string]int)
	for _, m := range s.index.Metadata() {
		section := m.Section
		if section == "" {
			section = "unknown"
		}
		bySection[section]++
	}
	return domain.CorpusStats{TotalPassages: s.index.Len(), BySection: bySection}
}

// Paper returns the full extracted document for a paper id.
func (s *QAService) Paper(paperID string) (domain.Document, error) {
	return s.docs.Load(paperID)
}

// PaperSummary is the display-ready summary of one paper.
type PaperSummary struct {
	PaperID       string   `json:"paper_id"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	Link          string   `json:"link,omitempty"`
	Illustrations []string `json:"illustrations"`
}

// SummarizePaper loads a paper, summarizes its concatenated sections
// best-effort, and collects up to six illustration URLs from the figures
// list plus image links found in section text.
func (s *QAService) SummarizePaper(paperID string) (PaperSummary, error) {
	doc, err := s.docs.Load(paperID)
	if err != nil {
		return PaperSummary{}, err
	}

	var parts []string
	illustrations := append([]string(nil), doc.Figures...)
	for _, name := range docstore.SectionOrder(doc) {
		text := doc.Sections[name]
		parts = append(parts, text)
		illustrations = append(illustrations, docstore.ImageURLs(text)...)
	}

	summary, err := s.summarizer.Summarize(strings.Join(parts, "\n\n"), s.opts.SummaryMaxLen, s.opts.SummaryMinLen)
	if err != nil {
		summary = SummaryError
	}

	return PaperSummary{
		PaperID:       paperID,
		Title:         doc.Title,
		Summary:       summary,
		Link:          doc.Link,
		Illustrations: dedupe(illustrations, 6),
	}, nil
}

// Feedback appends one user feedback entry to the feedback log.
func (s *QAService) Feedback(entry json.RawMessage) error {
	return s.feedback.Append(entry)
}

func (s *QAService) embed(text string) ([]float32, error) {
	s.embedMu.Lock()
	defer s.embedMu.Unlock()
	return s.embedder.Embed(text)
}

// snippet returns the cached passage text for an index position, or empty
// when the bounded sample cache does not cover it. A miss is expected and
// degrades the display, never the request.
func (s *QAService) snippet(idx int) string {
	if idx >= 0 && idx < len(s.samples) {
		return s.samples[idx]
	}
	return ""
}

func dedupe(urls []string, limit int) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, limit)
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}
	return out
}
