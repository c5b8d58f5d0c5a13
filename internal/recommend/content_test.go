package recommend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revue/internal/models"
	"revue/internal/recommend"
)

func testCorpus() []models.Movie {
	return []models.Movie{
		{ID: 10, Title: "Dream Heist", Overview: "a thief steals secrets from dreams inside dreams"},
		{ID: 20, Title: "Star Voyage", Overview: "astronauts travel through a wormhole between stars"},
		{ID: 30, Title: "Dream Within", Overview: "a thief lost inside dreams hunts secrets"},
		{ID: 40, Title: "Marmalade Bear", Overview: "a polite bear eats marmalade sandwiches in london"},
	}
}

func TestNearestRanksByOverviewSimilarity(t *testing.T) {
	ix := recommend.BuildContentIndex(testCorpus(), recommend.IndexOptions{})

	got := ix.Nearest("Dream Heist", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Dream Within", got[0].Title)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestNearestExcludesTarget(t *testing.T) {
	ix := recommend.BuildContentIndex(testCorpus(), recommend.IndexOptions{})

	got := ix.Nearest("Dream Heist", 10)
	assert.LessOrEqual(t, len(got), len(testCorpus())-1)
	for _, rec := range got {
		assert.NotEqual(t, int64(10), rec.MovieID)
	}
}

func TestNearestUnknownTitle(t *testing.T) {
	ix := recommend.BuildContentIndex(testCorpus(), recommend.IndexOptions{})
	assert.Empty(t, ix.Nearest("No Such Film", 5))
}

func TestNearestTitleMatchIsCaseInsensitive(t *testing.T) {
	ix := recommend.BuildContentIndex(testCorpus(), recommend.IndexOptions{})
	assert.NotEmpty(t, ix.Nearest("dream heist", 1))
}

func TestNearestRespectsK(t *testing.T) {
	ix := recommend.BuildContentIndex(testCorpus(), recommend.IndexOptions{})
	assert.Len(t, ix.Nearest("Dream Heist", 1), 1)
	assert.Empty(t, ix.Nearest("Dream Heist", 0))
	assert.Empty(t, ix.Nearest("Dream Heist", -3))
}

func TestNearestTiesKeepCorpusOrder(t *testing.T) {
	corpus := []models.Movie{
		{ID: 1, Title: "Target", Overview: "haunted castle ghosts"},
		{ID: 2, Title: "Twin A", Overview: "identical spooky overview"},
		{ID: 3, Title: "Twin B", Overview: "identical spooky overview"},
	}
	ix := recommend.BuildContentIndex(corpus, recommend.IndexOptions{})

	got := ix.Nearest("Target", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Twin A", got[0].Title)
	assert.Equal(t, "Twin B", got[1].Title)
	assert.Equal(t, got[0].Score, got[1].Score)
}

func TestBuildHandlesMissingOverviews(t *testing.T) {
	corpus := []models.Movie{
		{ID: 1, Title: "Blank"},
		{ID: 2, Title: "Also Blank", Overview: ""},
		{ID: 3, Title: "Described", Overview: "a proper overview"},
	}
	ix := recommend.BuildContentIndex(corpus, recommend.IndexOptions{})
	assert.Equal(t, 3, ix.Len())

	// A blank target has a zero vector: everything ties at similarity 0,
	// corpus order decides.
	got := ix.Nearest("Blank", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Also Blank", got[0].Title)
	assert.Equal(t, 0.0, got[0].Score)
}

func TestBuildVocabularyCap(t *testing.T) {
	ix := recommend.BuildContentIndex(testCorpus(), recommend.IndexOptions{MaxFeatures: 5})
	assert.Equal(t, 5, ix.Dim())

	// The capped index still ranks the overlapping overview first.
	got := ix.Nearest("Dream Heist", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "Dream Within", got[0].Title)
}

func TestBuildDeterministic(t *testing.T) {
	a := recommend.BuildContentIndex(testCorpus(), recommend.IndexOptions{})
	b := recommend.BuildContentIndex(testCorpus(), recommend.IndexOptions{})
	assert.Equal(t, a.Nearest("Star Voyage", 3), b.Nearest("Star Voyage", 3))
}

func TestRowByID(t *testing.T) {
	ix := recommend.BuildContentIndex(testCorpus(), recommend.IndexOptions{})
	row, ok := ix.RowByID(30)
	require.True(t, ok)
	assert.Equal(t, "Dream Within", ix.Movie(row).Title)

	_, ok = ix.RowByID(999)
	assert.False(t, ok)
}
