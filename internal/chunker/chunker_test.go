package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacebio/internal/domain"
)

func TestSplit_WindowBounds(t *testing.T) {
	text := strings.Repeat("abcde fghij ", 100) // 1200 chars
	w := NewWindow(100)

	chunks := w.Split(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100)
		assert.GreaterOrEqual(t, len(strings.TrimSpace(c)), 30)
	}
}

func TestSplit_EmptyAndWhitespace(t *testing.T) {
	w := NewWindow(100)
	assert.Nil(t, w.Split(""))
	assert.Nil(t, w.Split("   \n\t  "))
}

func TestSplit_DropsShortTail(t *testing.T) {
	// 100 chars + a 10-char tail: the tail is under the 30-char floor.
	text := strings.Repeat("x", 100) + strings.Repeat("y", 10)
	w := NewWindow(100)

	chunks := w.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.Repeat("x", 100), chunks[0])
}

func TestSplit_ShortInputEntirelyDropped(t *testing.T) {
	w := NewWindow(800)
	assert.Empty(t, w.Split("too short to keep"))
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("space biology microgravity bone density ", 50)
	w := NewWindow(120)

	first := w.Split(text)
	second := w.Split(text)
	assert.Equal(t, first, second)
}

func TestSplit_Reconstruction(t *testing.T) {
	// No whitespace at window edges, so surviving chunks concatenate
	// back to the original text.
	text := strings.Repeat("a", 250)
	w := NewWindow(100)

	chunks := w.Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitDocument_ChunkIDsPerSection(t *testing.T) {
	doc := domain.Document{
		PaperID: "PMC123",
		Title:   "Bone loss in microgravity",
		Sections: map[string]string{
			"Abstract": strings.Repeat("a", 150),
			"Results":  strings.Repeat("r", 250),
		},
	}
	w := NewWindow(100)

	passages := w.SplitDocument(doc, []string{"Abstract", "Results"})
	require.Len(t, passages, 4)

	assert.Equal(t, "Abstract", passages[0].Section)
	assert.Equal(t, 0, passages[0].ChunkID)
	assert.Equal(t, 1, passages[1].ChunkID)

	// chunk ids restart from zero in the next section
	assert.Equal(t, "Results", passages[2].Section)
	assert.Equal(t, 0, passages[2].ChunkID)
	assert.Equal(t, 1, passages[3].ChunkID)

	for _, p := range passages {
		assert.Equal(t, "PMC123", p.PaperID)
		assert.Equal(t, "Bone loss in microgravity", p.Title)
	}
}

func TestSplitDocument_SkipsEmptySections(t *testing.T) {
	doc := domain.Document{
		PaperID:  "PMC1",
		Sections: map[string]string{"Abstract": "", "Results": strings.Repeat("r", 100)},
	}
	w := NewWindow(100)

	passages := w.SplitDocument(doc, []string{"Abstract", "Results"})
	require.Len(t, passages, 1)
	assert.Equal(t, "Results", passages[0].Section)
}
