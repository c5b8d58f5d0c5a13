// Package genretag suggests genres for a movie from its title and overview.
package genretag

import "context"

// Request holds the movie fields the suggester may use.
type Request struct {
	Title    string
	Year     int
	Overview string
}

// Suggestion holds suggested genres with a confidence in [0,1].
type Suggestion struct {
	Genres     []string
	Confidence float64
}

// Suggester suggests genres for a movie.
type Suggester interface {
	Suggest(ctx context.Context, req Request) (Suggestion, error)
}
