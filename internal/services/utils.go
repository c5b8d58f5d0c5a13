package services

import (
	"github.com/pgvector/pgvector-go"

	"revue/internal/models"
)

func vectorOf(entry *models.MovieEmbedding) pgvector.Vector {
	return pgvector.NewVector(entry.Vector)
}
