package models

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation error")

	// ErrEmptyReviewSet is returned when an aggregate verdict is requested
	// for zero reviews. Callers must handle it; there is no neutral default.
	ErrEmptyReviewSet = errors.New("empty review set")

	// ErrModelMismatch indicates the feature dimensionality produced by the
	// vectorizer does not match what the classifier expects. Fatal, never
	// retried.
	ErrModelMismatch = errors.New("model artifact mismatch")
)
