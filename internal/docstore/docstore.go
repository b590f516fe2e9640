package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"spacebio/internal/domain"
)

// ErrNotFound reports that no document file exists for a paper id.
var ErrNotFound = errors.New("paper not found")

// Store reads extracted paper documents from a directory of per-paper
// JSON files written by the acquisition stage.
type Store struct {
	dir string
}

func New(dir string) *Store { return &Store{dir: dir} }

// Files lists all document files in the store, sorted by name. The stable
// order keeps ingestion deterministic across runs.
func (s *Store) Files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile reads and decodes a single document file.
func (s *Store) LoadFile(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	doc, err := Decode(data)
	if err != nil {
		return domain.Document{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// Load finds and decodes the document for a paper id, accepting either a
// bare PMC id or the prefixed form the extraction stage writes, in either
// case.
func (s *Store) Load(paperID string) (domain.Document, error) {
	path, ok := s.resolve(paperID)
	if !ok {
		return domain.Document{}, ErrNotFound
	}
	return s.LoadFile(path)
}

// ResolveLink returns the source link recorded for a paper, or empty when
// the document or its link is missing. Never an error: a missing link
// degrades the response, it does not fail it.
func (s *Store) ResolveLink(paperID string) string {
	doc, err := s.Load(paperID)
	if err != nil {
		return ""
	}
	return doc.Link
}

func (s *Store) resolve(paperID string) (string, bool) {
	variants := []string{paperID, strings.ToLower(paperID)}
	if !strings.HasPrefix(paperID, "pmc_articles_") {
		variants = append(variants, "pmc_articles_"+paperID, "pmc_articles_"+strings.ToLower(paperID))
	}
	for _, v := range variants {
		path := filepath.Join(s.dir, v+".json")
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// rawDocument is the wire shape of an extracted paper. Section values and
// the figures field are loosely typed upstream (a list, a stringified
// list, absent, or figures nested inside sections), so both are decoded
// through explicit fallback rules rather than trusted as-is.
type rawDocument struct {
	PaperID  string                     `json:"paper_id"`
	Title    string                     `json:"title"`
	Link     string                     `json:"link"`
	URL      string                     `json:"url"`
	Sections map[string]json.RawMessage `json:"sections"`
	Figures  json.RawMessage            `json:"figures"`
}

// Decode parses a document record, normalizing the figures union: the
// top-level figures field wins, then a figures entry inside sections, and
// anything undecodable collapses to an empty list.
func Decode(data []byte) (domain.Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Document{}, err
	}
	doc := domain.Document{
		PaperID:  raw.PaperID,
		Title:    raw.Title,
		Link:     raw.Link,
		Sections: make(map[string]string, len(raw.Sections)),
	}
	if doc.Link == "" {
		doc.Link = raw.URL
	}
	var nestedFigures json.RawMessage
	for name, value := range raw.Sections {
		var text string
		if err := json.Unmarshal(value, &text); err == nil {
			doc.Sections[name] = text
			continue
		}
		if name == "figures" {
			nestedFigures = value
		}
		// Non-string section values other than figures are dropped.
	}
	doc.Figures = decodeFigures(raw.Figures)
	if len(doc.Figures) == 0 {
		doc.Figures = decodeFigures(nestedFigures)
	}
	return doc, nil
}

func decodeFigures(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	// Stringified list, e.g. "[\"a.png\"]".
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return list
		}
	}
	return nil
}

// SectionOrder returns a document's section names in canonical order: the
// well-known extraction sections first, then any others sorted. Chunk ids
// and index positions depend on this order staying stable across runs.
func SectionOrder(doc domain.Document) []string {
	known := []string{"Abstract", "Results", "Conclusion"}
	seen := make(map[string]bool, len(known))
	var order []string
	for _, name := range known {
		if _, ok := doc.Sections[name]; ok {
			order = append(order, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range doc.Sections {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

var imageURLPattern = regexp.MustCompile(`https?://[^\s]+\.(?:png|jpg|jpeg|gif)`)

// ImageURLs extracts direct image links embedded in section text. Used to
// supplement a paper's figure list for display.
func ImageURLs(text string) []string {
	return imageURLPattern.FindAllString(text, -1)
}
