package domain

// Document is one extracted paper as produced by the acquisition stage.
// Sections maps section name (Abstract, Results, Conclusion) to its text.
type Document struct {
	PaperID  string            `json:"paper_id"`
	Title    string            `json:"title"`
	Link     string            `json:"link"`
	Sections map[string]string `json:"sections"`
	Figures  []string          `json:"figures"`
}

// Passage is a bounded chunk of one document section, the atomic unit of
// indexing and retrieval. Created at ingestion time, never mutated.
type Passage struct {
	PaperID string
	Title   string
	Section string
	ChunkID int
	Text    string
}

// Meta projects the passage onto its index-aligned metadata record.
func (p Passage) Meta() PassageMeta {
	return PassageMeta{PaperID: p.PaperID, Title: p.Title, Section: p.Section, ChunkID: p.ChunkID}
}

// PassageMeta is one record of the metadata table, positionally aligned
// with the vector index. Field names match the persisted metadata.json.
type PassageMeta struct {
	PaperID string `json:"paper_id"`
	Title   string `json:"title"`
	Section string `json:"section"`
	ChunkID int    `json:"chunk_id"`
}

// SearchResult is one retrieval hit, ordered by ascending distance
// (squared Euclidean; closer means more similar).
type SearchResult struct {
	Distance float64     `json:"distance"`
	Meta     PassageMeta `json:"meta"`
	Snippet  string      `json:"snippet,omitempty"`

	// Index is the stored position of the hit, the join key into the
	// sample passage cache. Not part of the wire shape.
	Index int `json:"-"`
}

// Polarity is the coarse direction-of-effect label of a snippet.
type Polarity string

const (
	Increase Polarity = "increase"
	Decrease Polarity = "decrease"
	NoEffect Polarity = "no_effect"
	Unclear  Polarity = "unclear"
)

// Verdict summarizes polarity agreement across retrieved evidence.
type Verdict string

const (
	VerdictAgree        Verdict = "Agree"
	VerdictMixed        Verdict = "Mixed"
	VerdictInsufficient Verdict = "Insufficient evidence"
)

// EvidenceCard is the display-ready projection of a retrieval hit.
type EvidenceCard struct {
	PaperID string `json:"paper_id"`
	Title   string `json:"title"`
	Section string `json:"section"`
	Snippet string `json:"snippet"`
	Link    string `json:"link,omitempty"`
}

// Answer is the full response to a question: a fixed-template sentence,
// the aggregate verdict with its confidence, and a bounded evidence list.
type Answer struct {
	Query      string         `json:"query"`
	Answer     string         `json:"answer"`
	Verdict    Verdict        `json:"verdict"`
	Confidence float64        `json:"confidence"`
	Evidence   []EvidenceCard `json:"evidence"`
}

// CorpusStats is a small summary of the loaded corpus.
type CorpusStats struct {
	TotalPassages int            `json:"num_passages"`
	BySection     map[string]int `json:"by_section"`
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
// Both ingestion and query time must use the same embedder identity;
// the index artifact records Name() and rejects a mismatch on load.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float32, error)
}

// Summarizer produces a brief summary of the provided text, bounded by a
// character budget. Best-effort: callers substitute a fixed string on error.
type Summarizer interface {
	Summarize(text string, maxLen, minLen int) (string, error)
}
