package services_test

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"revue/internal/store/primary"
	"revue/pkg/classifier"
)

func newTestStore(t *testing.T) *primary.StoreImpl {
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
	`)
	require.NoError(t, err)

	return primary.NewWithDB(db)
}

// keywordModel scores normalized text by the strongest keyword it contains,
// defaulting to neutral. Keeps band behavior predictable without a trained
// artifact.
type keywordModel struct {
	probs map[string]float64
}

func (m keywordModel) Transform(text string) classifier.FeatureVector {
	p := 0.5
	for _, tok := range strings.Fields(text) {
		if v, ok := m.probs[tok]; ok {
			p = v
			break
		}
	}
	return classifier.FeatureVector{Indices: []int{0}, Values: []float64{p}, Dim: 1}
}

func (m keywordModel) PredictProba(v classifier.FeatureVector) (float64, float64, error) {
	p := v.Values[0]
	return 1 - p, p, nil
}

func (m keywordModel) Dimension() int { return 1 }

func newKeywordModel() keywordModel {
	return keywordModel{probs: map[string]float64{
		"superb": 0.9,
		"decent": 0.7,
		"meh":    0.5,
		"awful":  0.1,
	}}
}
