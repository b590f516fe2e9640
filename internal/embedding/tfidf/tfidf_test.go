package tfidf

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"microgravity increased bone loss in mice",
	"radiation exposure reduced plant growth",
	"bone density decreased after spaceflight",
}

func TestPrepare_EmptyCorpus(t *testing.T) {
	e := NewEmbedder()
	assert.Error(t, e.Prepare(nil))
}

func TestEmbed_RequiresPrepare(t *testing.T) {
	e := NewEmbedder()
	_, err := e.Embed("bone loss")
	assert.Error(t, err)
}

func TestPrepare_FixedDimension(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	assert.Greater(t, e.Dimension(), 0)

	v1, err := e.Embed("bone loss in microgravity")
	require.NoError(t, err)
	v2, err := e.Embed("radiation")
	require.NoError(t, err)
	assert.Len(t, v1, e.Dimension())
	assert.Len(t, v2, e.Dimension())
}

func TestEmbed_UnitNorm(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	vec, err := e.Embed("bone density decreased")
	require.NoError(t, err)

	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbed_OutOfVocabularyIsZero(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	vec, err := e.Embed("xylophone quartet")
	require.NoError(t, err)
	for _, x := range vec {
		assert.Zero(t, x)
	}
}

func TestEmbed_Deterministic(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	a, err := e.Embed("bone loss after spaceflight")
	require.NoError(t, err)
	b, err := e.Embed("bone loss after spaceflight")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))

	path := filepath.Join(t.TempDir(), ModelFile)
	require.NoError(t, e.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, e.Dimension(), loaded.Dimension())
	assert.Equal(t, "tfidf", loaded.Name())

	want, err := e.Embed("radiation reduced growth")
	require.NoError(t, err)
	got, err := loaded.Embed("radiation reduced growth")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSave_RequiresPrepare(t *testing.T) {
	e := NewEmbedder()
	assert.Error(t, e.Save(filepath.Join(t.TempDir(), ModelFile)))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ModelFile))
	assert.Error(t, err)
}
