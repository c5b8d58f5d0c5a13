package recommend

import (
	"revue/internal/models"
)

// biasDamping regularizes user and item biases fitted from few ratings.
const biasDamping = 10.0

// BaselinePredictor is a damped-bias rating model (global mean + item bias +
// user bias) fitted from stored ratings. It implements
// CollaborativePredictor so the hybrid scorer works without an externally
// trained factor model; any such model can replace it.
type BaselinePredictor struct {
	globalMean float64
	itemBias   map[int64]float64
	userBias   map[int64]float64
}

// FitBaseline computes the baseline from rating history. An empty history
// yields a predictor that estimates 0 for every pair.
func FitBaseline(ratings []models.Rating) *BaselinePredictor {
	p := &BaselinePredictor{
		itemBias: make(map[int64]float64),
		userBias: make(map[int64]float64),
	}
	if len(ratings) == 0 {
		return p
	}

	var sum float64
	for _, r := range ratings {
		sum += r.Rating
	}
	p.globalMean = sum / float64(len(ratings))

	itemSum := make(map[int64]float64)
	itemCount := make(map[int64]float64)
	for _, r := range ratings {
		itemSum[r.MovieID] += r.Rating - p.globalMean
		itemCount[r.MovieID]++
	}
	for id, s := range itemSum {
		p.itemBias[id] = s / (itemCount[id] + biasDamping)
	}

	userSum := make(map[int64]float64)
	userCount := make(map[int64]float64)
	for _, r := range ratings {
		userSum[r.UserID] += r.Rating - p.globalMean - p.itemBias[r.MovieID]
		userCount[r.UserID]++
	}
	for id, s := range userSum {
		p.userBias[id] = s / (userCount[id] + biasDamping)
	}
	return p
}

// Predict estimates the rating for a (user, movie) pair. Unknown users or
// movies fall back to the fitted means; the error return exists only to
// satisfy the capability contract.
func (p *BaselinePredictor) Predict(userID, movieID int64) (float64, error) {
	return p.globalMean + p.itemBias[movieID] + p.userBias[userID], nil
}
