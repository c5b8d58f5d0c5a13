package ingest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revue/internal/ingest"
)

func TestSplitReviews(t *testing.T) {
	bulk := "First review,\nspread over two lines.\n\nSecond review.\r\n\r\n\r\nThird review.\n\n   \n"
	got := ingest.SplitReviews(bulk)
	assert.Equal(t, []string{
		"First review, spread over two lines.",
		"Second review.",
		"Third review.",
	}, got)
}

func TestSplitReviewsEmpty(t *testing.T) {
	assert.Empty(t, ingest.SplitReviews(""))
	assert.Empty(t, ingest.SplitReviews("\n\n  \n\n"))
}

func TestFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Loved it.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.html"), []byte("<p>Hated it.</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("not a review"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.txt"), []byte{0x00, 0x01, 0x02}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), nil, 0o644))

	results, err := ingest.FromDir(dir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	bodies := []string{results[0].Body, results[1].Body}
	assert.Contains(t, bodies, "Loved it.")
	assert.Contains(t, bodies, "Hated it.")
}

func TestFromDirNotADirectory(t *testing.T) {
	path := writeFile(t, "file.txt", "x")
	_, err := ingest.FromDir(path)
	require.Error(t, err)
}
