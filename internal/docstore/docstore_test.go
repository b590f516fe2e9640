package docstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacebio/internal/domain"
)

func writeDoc(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestFiles_SortedJSONOnly(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b.json", "{}")
	writeDoc(t, dir, "a.json", "{}")
	writeDoc(t, dir, "notes.txt", "ignore me")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	files, err := New(dir).Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.json", filepath.Base(files[0]))
	assert.Equal(t, "b.json", filepath.Base(files[1]))
}

func TestDecode_Basic(t *testing.T) {
	doc, err := Decode([]byte(`{
		"paper_id": "PMC123",
		"title": "Bone loss in microgravity",
		"link": "https://example.org/PMC123",
		"sections": {"Abstract": "text a", "Results": "text r"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "PMC123", doc.PaperID)
	assert.Equal(t, "https://example.org/PMC123", doc.Link)
	assert.Equal(t, "text a", doc.Sections["Abstract"])
	assert.Empty(t, doc.Figures)
}

func TestDecode_URLFallbackForLink(t *testing.T) {
	doc, err := Decode([]byte(`{"paper_id":"PMC1","url":"https://example.org/u","sections":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/u", doc.Link)
}

func TestDecode_FiguresVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "plain list",
			body: `{"paper_id":"p","figures":["a.png","b.png"],"sections":{}}`,
			want: []string{"a.png", "b.png"},
		},
		{
			name: "stringified list",
			body: `{"paper_id":"p","figures":"[\"a.png\"]","sections":{}}`,
			want: []string{"a.png"},
		},
		{
			name: "nested inside sections",
			body: `{"paper_id":"p","sections":{"figures":["c.png"]}}`,
			want: []string{"c.png"},
		},
		{
			name: "absent",
			body: `{"paper_id":"p","sections":{}}`,
			want: nil,
		},
		{
			name: "undecodable collapses to empty",
			body: `{"paper_id":"p","figures":42,"sections":{}}`,
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Decode([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, doc.Figures)
		})
	}
}

func TestDecode_DropsNonStringSections(t *testing.T) {
	doc, err := Decode([]byte(`{"paper_id":"p","sections":{"Abstract":"ok","weird":[1,2]}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Abstract": "ok"}, doc.Sections)
}

func TestLoad_IDVariants(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "pmc_articles_pmc42.json", `{"paper_id":"PMC42","title":"t","sections":{}}`)
	store := New(dir)

	for _, id := range []string{"PMC42", "pmc42", "pmc_articles_pmc42"} {
		doc, err := store.Load(id)
		require.NoError(t, err, "id %q", id)
		assert.Equal(t, "PMC42", doc.PaperID)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := New(t.TempDir()).Load("PMC999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveLink_MissingPaperIsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "pmc1.json", `{"paper_id":"PMC1","link":"https://example.org/1","sections":{}}`)
	store := New(dir)

	assert.Equal(t, "https://example.org/1", store.ResolveLink("pmc1"))
	assert.Equal(t, "", store.ResolveLink("pmc404"))
}

func TestSectionOrder_KnownFirstThenSorted(t *testing.T) {
	doc := domain.Document{Sections: map[string]string{
		"Methods":    "m",
		"Results":    "r",
		"Abstract":   "a",
		"Discussion": "d",
		"Conclusion": "c",
	}}
	assert.Equal(t,
		[]string{"Abstract", "Results", "Conclusion", "Discussion", "Methods"},
		SectionOrder(doc))
}

func TestImageURLs(t *testing.T) {
	text := "See https://example.org/fig1.png and http://example.org/x.jpeg but not https://example.org/data.csv"
	assert.Equal(t,
		[]string{"https://example.org/fig1.png", "http://example.org/x.jpeg"},
		ImageURLs(text))
}
