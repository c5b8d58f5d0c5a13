package tests

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"revue/internal/app"
	"revue/internal/config"
	"revue/internal/sentiment"
	"revue/internal/services"
	"revue/internal/store/primary"
	"revue/pkg/classifier"
)

func newTestDB(t *testing.T) *primary.StoreImpl {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE movies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			year INTEGER NOT NULL DEFAULT 0,
			overview TEXT NOT NULL DEFAULT '',
			genres TEXT NOT NULL DEFAULT '',
			imdb_id TEXT,
			mean_sentiment REAL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE (title, year)
		);
		CREATE TABLE reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
			body TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'typed',
			probability REAL,
			label TEXT,
			stars INTEGER,
			created_at DATETIME NOT NULL
		);
		CREATE TABLE verdicts (
			id TEXT PRIMARY KEY,
			movie_id INTEGER NOT NULL UNIQUE REFERENCES movies(id) ON DELETE CASCADE,
			review_count INTEGER NOT NULL,
			positive_count INTEGER NOT NULL,
			mixed_count INTEGER NOT NULL,
			negative_count INTEGER NOT NULL,
			mean_probability REAL NOT NULL,
			label TEXT NOT NULL,
			stars INTEGER NOT NULL,
			computed_at DATETIME NOT NULL
		);
		CREATE TABLE ratings (
			user_id INTEGER NOT NULL,
			movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
			rating REAL NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, movie_id)
		);
		CREATE TABLE background_jobs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT NOT NULL UNIQUE,
			task_type TEXT NOT NULL,
			status TEXT NOT NULL,
			movie_id INTEGER,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	require.NoError(t, err)

	return primary.NewWithDB(db)
}

// testModel leans positive on "great" and negative on "terrible".
func testModel(t *testing.T) *classifier.LinearModel {
	t.Helper()
	vocab := map[string]int{"great": 0, "terrible": 1}
	m, err := classifier.New(vocab, []float64{1, 1}, []float64{4, -4}, 0, 1)
	require.NoError(t, err)
	return m
}

// newTestApp wires a full App over an in-memory database, without Redis or
// the vector backend.
func newTestApp(t *testing.T) (*app.App, *primary.StoreImpl) {
	t.Helper()
	ps := newTestDB(t)
	scorer := sentiment.NewScorer(testModel(t))

	cfg := &config.Config{}
	cfg.Similarity.DefaultLimit = 10

	a := &app.App{
		Config:       cfg,
		Scorer:       scorer,
		MovieStore:   ps,
		ReviewStore:  ps,
		VerdictStore: ps,
		RatingStore:  ps,
		JobStore:     ps,
	}
	a.ReviewService = services.NewReviewService(ps, ps, scorer, nil)
	a.AnalysisService = services.NewAnalysisService(ps, ps, ps, scorer)
	a.RecommendService = services.NewRecommendService(ps, ps, nil, nil, services.RecommendOptions{})
	return a, ps
}
