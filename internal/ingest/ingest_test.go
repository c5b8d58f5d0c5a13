package ingest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revue/internal/ingest"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromFileText(t *testing.T) {
	path := writeFile(t, "review.txt", "A wonderful film.\n")
	res, err := ingest.FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "text", res.ContentType)
	assert.Equal(t, "A wonderful film.", res.Body)
	assert.Equal(t, path, res.FilePath)
}

func TestFromFileHTML(t *testing.T) {
	page := `<html><head><title>x</title><style>p{}</style></head><body>
		<nav><p>menu item</p></nav>
		<h1>Review</h1>
		<p>First  paragraph of the  review.</p>
		<p>Second <em>emphasised</em> paragraph.</p>
		<script>var noise = 1;</script>
	</body></html>`
	path := writeFile(t, "review.html", page)

	res, err := ingest.FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "html", res.ContentType)
	assert.Equal(t, "First paragraph of the review. Second emphasised paragraph.", res.Body)
}

func TestFromFileMissing(t *testing.T) {
	_, err := ingest.FromFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestFromFileDirectory(t *testing.T) {
	_, err := ingest.FromFile(t.TempDir())
	require.Error(t, err)
}

func TestCleanText(t *testing.T) {
	in := "\uFEFFIt’s “fine” — mostly…"
	got := ingest.CleanText(in, "test")
	assert.Equal(t, `It's "fine" -- mostly...`, got)
}

func TestParagraphTextEmpty(t *testing.T) {
	out, err := ingest.ParagraphText("<div>no paragraphs here</div>")
	require.NoError(t, err)
	assert.Empty(t, out)
}
