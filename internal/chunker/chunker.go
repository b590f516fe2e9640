package chunker

import (
	"strings"
	"unicode/utf8"

	"spacebio/internal/domain"
)

// minChunkLen is the shortest trimmed window kept as a passage; anything
// shorter is too little text to be useful evidence.
const minChunkLen = 30

// DefaultSize is roughly 200-300 tokens of scientific prose.
const DefaultSize = 800

// Window splits section text into contiguous fixed-size character windows.
// No sentence awareness and no normalization beyond trimming: determinism
// matters more here than linguistic boundaries.
type Window struct {
	size int
}

func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultSize
	}
	return &Window{size: size}
}

// Split cuts text into non-overlapping windows of exactly w.size characters
// (the final window may be shorter) and drops windows whose trimmed length
// is below minChunkLen. Empty or whitespace-only input yields nil.
func (w *Window) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	// Window over runes so multi-byte characters never split mid-sequence.
	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); i += w.size {
		end := i + w.size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[i:end]))
		if utf8.RuneCountInString(chunk) >= minChunkLen {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// SplitDocument chunks every non-empty section of the document, assigning
// chunk ids that increase 0-based within each (document, section) pair.
// Sections are visited in the order given, which the caller keeps stable.
func (w *Window) SplitDocument(doc domain.Document, sectionOrder []string) []domain.Passage {
	var passages []domain.Passage
	for _, section := range sectionOrder {
		text := doc.Sections[section]
		if text == "" {
			continue
		}
		for i, chunk := range w.Split(text) {
			passages = append(passages, domain.Passage{
				PaperID: doc.PaperID,
				Title:   doc.Title,
				Section: section,
				ChunkID: i,
				Text:    chunk,
			})
		}
	}
	return passages
}
