// Package classifier defines the trained-model capability consumed by the
// sentiment scorer, plus a linear TF-IDF implementation that loads the JSON
// artifact produced by offline training. Any implementation of Model is
// substitutable; the scorer never depends on a concrete type.
package classifier

// FeatureVector is a sparse vector in the model's fitted feature space.
// Indices are strictly increasing; Dim is the dimensionality of the space,
// not the number of non-zero entries.
type FeatureVector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// Model is the opaque trained-artifact capability: a vectorizer fitted at
// training time plus a binary classifier over its feature space.
type Model interface {
	// Transform maps normalized text into the fitted feature space.
	Transform(text string) FeatureVector

	// PredictProba returns the calibrated (negative, positive) class
	// probabilities for a feature vector. It fails with
	// models.ErrModelMismatch when the vector's dimensionality does not
	// match the classifier's expected input.
	PredictProba(v FeatureVector) (neg, pos float64, err error)

	// Dimension is the feature-space size the classifier expects.
	Dimension() int
}
