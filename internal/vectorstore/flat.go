package vectorstore

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"spacebio/internal/domain"
)

// Artifact names inside the embeddings directory. The index blob and
// metadata table are written only by ingestion and loaded read-only by
// the server; their positions are the sole join key between the two.
const (
	IndexFile    = "spacebio.index"
	MetadataFile = "metadata.json"
	SamplesFile  = "sample_passages.json"
)

var (
	// ErrEmptyIndex rejects building or persisting an index over zero vectors.
	ErrEmptyIndex = errors.New("index contains no vectors")
	// ErrInvalidK rejects search requests with k < 1.
	ErrInvalidK = errors.New("k must be >= 1")
)

// FlatIndex is a brute-force squared-Euclidean nearest-neighbor index over
// raw (non-normalized) vectors, with a positionally aligned metadata table.
// It is append-only during ingestion and immutable after Load, so concurrent
// searches need no locking.
type FlatIndex struct {
	model     string
	dimension int
	vectors   [][]float32
	meta      []domain.PassageMeta
}

// NewFlatIndex creates an empty index tagged with the embedding model
// identity that produces its vectors.
func NewFlatIndex(model string) *FlatIndex {
	return &FlatIndex{model: model}
}

// Model returns the embedding model identity the index was built with.
func (ix *FlatIndex) Model() string { return ix.model }

// Dimension returns the vector dimension, 0 until the first Add.
func (ix *FlatIndex) Dimension() int { return ix.dimension }

// Len returns the number of stored vectors (== metadata records).
func (ix *FlatIndex) Len() int { return len(ix.vectors) }

// Meta returns the metadata record at position i.
func (ix *FlatIndex) Meta(i int) domain.PassageMeta { return ix.meta[i] }

// Metadata returns the full metadata table in index order.
func (ix *FlatIndex) Metadata() []domain.PassageMeta { return ix.meta }

// Add appends a vector and its metadata record at the same position.
// The first vector fixes the index dimension; later mismatches are errors.
func (ix *FlatIndex) Add(vec []float32, meta domain.PassageMeta) error {
	if len(vec) == 0 {
		return errors.New("empty vector")
	}
	if ix.dimension == 0 {
		ix.dimension = len(vec)
	} else if len(vec) != ix.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vec), ix.dimension)
	}
	ix.vectors = append(ix.vectors, vec)
	ix.meta = append(ix.meta, meta)
	return nil
}

// Search returns the k nearest stored vectors to query under squared
// Euclidean distance, ascending. Ties break toward the lower stored index,
// so earlier-ingested passages win deterministically. k beyond the corpus
// size returns everything.
func (ix *FlatIndex) Search(query []float32, k int) ([]domain.SearchResult, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(query), ix.dimension)
	}
	type hit struct {
		idx  int
		dist float64
	}
	hits := make([]hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = hit{idx: i, dist: squaredL2(query, v)}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].dist != hits[b].dist {
			return hits[a].dist < hits[b].dist
		}
		return hits[a].idx < hits[b].idx
	})
	if k > len(hits) {
		k = len(hits)
	}
	results := make([]domain.SearchResult, 0, k)
	for _, h := range hits[:k] {
		results = append(results, domain.SearchResult{
			Distance: h.dist,
			Meta:     ix.meta[h.idx],
			Index:    h.idx,
		})
	}
	return results, nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// indexBlob is the gob layout of the persisted index artifact.
type indexBlob struct {
	Model     string
	Dimension int
	Vectors   [][]float32
}

// samplesBlob matches the sample_passages.json layout.
type samplesBlob struct {
	Passages []string `json:"passages"`
}

// Save persists the index blob, the metadata table, and a bounded sample of
// passage texts into dir. Each artifact is written to a temp file and
// renamed, so a concurrently starting server never sees a partial file.
func (ix *FlatIndex) Save(dir string, samples []string) error {
	if ix.Len() == 0 {
		return ErrEmptyIndex
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	blob := indexBlob{Model: ix.model, Dimension: ix.dimension, Vectors: ix.vectors}
	if err := writeAtomic(filepath.Join(dir, IndexFile), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(blob)
	}); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, MetadataFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(ix.meta)
	}); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, SamplesFile), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(samplesBlob{Passages: samples})
	}); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return nil
}

// Load reads the index blob and metadata table from dir and verifies their
// positional alignment. Missing or unreadable artifacts are fatal: search
// has no degraded mode.
func Load(dir string) (*FlatIndex, error) {
	f, err := os.Open(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()
	var blob indexBlob
	if err := gob.NewDecoder(f).Decode(&blob); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta []domain.PassageMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if len(blob.Vectors) != len(meta) {
		return nil, fmt.Errorf("index/metadata misaligned: %d vectors, %d records", len(blob.Vectors), len(meta))
	}
	if len(blob.Vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	return &FlatIndex{
		model:     blob.Model,
		dimension: blob.Dimension,
		vectors:   blob.Vectors,
		meta:      meta,
	}, nil
}

// LoadSamples reads the sample passage cache from dir. The file is an
// optional artifact: absence is not an error and yields no snippets.
func LoadSamples(dir string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, SamplesFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var blob samplesBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("decode samples: %w", err)
	}
	return blob.Passages, nil
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
