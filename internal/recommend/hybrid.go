package recommend

import (
	log "github.com/sirupsen/logrus"

	"revue/internal/models"
)

// CollaborativePredictor estimates a user's rating for an item from
// historical rating patterns. It is an opaque, optional capability: when
// absent the collaborative term degrades to zero, which is not an error.
type CollaborativePredictor interface {
	Predict(userID, movieID int64) (float64, error)
}

// Weights blends the three hybrid sub-scores. They need not sum to 1;
// callers may rescale.
type Weights struct {
	Content   float64 `mapstructure:"content" json:"content"`
	Collab    float64 `mapstructure:"collab" json:"collab"`
	Sentiment float64 `mapstructure:"sentiment" json:"sentiment"`
}

// DefaultWeights matches the blend the recommender was tuned with.
var DefaultWeights = Weights{Content: 0.5, Collab: 0.4, Sentiment: 0.1}

// neutralSentiment stands in for a candidate with no mean-sentiment data:
// maximally neutral, not a fabricated opinion.
const neutralSentiment = 0.5

// HybridScores returns one blended score per candidate, in exactly the
// candidate order given.
//
// Per-candidate terms:
//   - content: cosine similarity between the user's mean liked-movie vector
//     and the candidate's content vector; 0 for every candidate when the
//     user has no liked movies, and 0 for candidates outside the corpus.
//   - collab: the predictor's estimated rating, or 0 without a predictor.
//   - sentiment: 1 - |candidate mean sentiment - user sentiment mean|, with
//     0.5 standing in for candidates missing sentiment data.
func HybridScores(user models.UserProfile, candidates []int64, ix *ContentIndex, predictor CollaborativePredictor, w Weights) []float64 {
	scores := make([]float64, len(candidates))
	if len(candidates) == 0 {
		return scores
	}

	profile := ix.profileVector(user.LikedMovieRows)

	for i, movieID := range candidates {
		var content float64
		row, inCorpus := ix.RowByID(movieID)
		if profile != nil && inCorpus {
			content = ix.rows[row].dot(profile)
		}

		var collab float64
		if predictor != nil {
			est, err := predictor.Predict(user.UserID, movieID)
			if err != nil {
				log.Warnf("collaborative predictor failed for user %d movie %d: %v", user.UserID, movieID, err)
			} else {
				collab = est
			}
		}

		itemSentiment := neutralSentiment
		if inCorpus {
			if ms := ix.movies[row].MeanSentiment; ms != nil {
				itemSentiment = *ms
			}
		}
		affinity := 1 - abs(itemSentiment-user.SentimentMean)

		scores[i] = w.Content*content + w.Collab*collab + w.Sentiment*affinity
	}
	return scores
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
