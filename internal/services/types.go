package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"

	"revue/internal/store"
)

// EmbeddingProvider is one backend capable of turning text into a vector.
type EmbeddingProvider interface {
	Name() string
	ModelName() string
	GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	Dimension() int
	Enabled() bool
}

type RetryStrategy interface {
	// NextBackoff returns the wait in milliseconds before the given retry
	// attempt, or a negative value to stop retrying.
	NextBackoff(attempt int) int64
}

// SimpleRetryStrategy is exponential backoff capped at 30s.
type SimpleRetryStrategy struct {
	MaxAttempts int
	BaseDelayMs int64
}

func (s *SimpleRetryStrategy) NextBackoff(attempt int) int64 {
	if s.MaxAttempts <= 0 || attempt >= s.MaxAttempts {
		return -1
	}
	backoff := s.BaseDelayMs * (1 << attempt)
	const maxDelay = int64(30000)
	if backoff > maxDelay {
		backoff = maxDelay
	}
	return backoff
}

// FallbackEmbeddingService tries its providers in order, retrying each per
// the strategy before moving on. All providers must share a dimension so
// stored vectors stay comparable.
type FallbackEmbeddingService struct {
	providers     []EmbeddingProvider
	active        int
	retryStrategy RetryStrategy
	mu            sync.RWMutex
}

var _ store.EmbeddingService = (*FallbackEmbeddingService)(nil)

func NewFallbackEmbeddingService(providers []EmbeddingProvider, strategy RetryStrategy) (*FallbackEmbeddingService, error) {
	enabled := make([]EmbeddingProvider, 0, len(providers))
	for _, p := range providers {
		if p.Enabled() {
			enabled = append(enabled, p)
		} else {
			log.Warnf("embedding provider %s is disabled, skipping", p.Name())
		}
	}
	if len(enabled) == 0 {
		return nil, fmt.Errorf("at least one enabled embedding provider is required")
	}
	if strategy == nil {
		strategy = &SimpleRetryStrategy{MaxAttempts: 3, BaseDelayMs: 100}
	}
	dim := enabled[0].Dimension()
	for _, p := range enabled[1:] {
		if p.Dimension() != dim {
			return nil, fmt.Errorf("embedding providers must share a dimension: %s has %d, expected %d",
				p.Name(), p.Dimension(), dim)
		}
	}
	return &FallbackEmbeddingService{providers: enabled, retryStrategy: strategy}, nil
}

func (s *FallbackEmbeddingService) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.providers[s.active].Dimension()
}

func (s *FallbackEmbeddingService) ModelName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.providers[s.active].ModelName()
}

// GenerateEmbedding retries the active provider per the strategy, then
// rotates to the next one. It fails once every provider has been cycled.
func (s *FallbackEmbeddingService) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	s.mu.RLock()
	start := s.active
	n := len(s.providers)
	s.mu.RUnlock()

	var lastErr error
	attempt := 0

	for {
		s.mu.RLock()
		provider := s.providers[s.active]
		s.mu.RUnlock()

		vec, err := provider.GenerateEmbedding(ctx, text)
		if ctx.Err() != nil {
			return pgvector.Vector{}, fmt.Errorf("embedding generation cancelled: %w", ctx.Err())
		}
		if err == nil {
			return vec, nil
		}

		lastErr = fmt.Errorf("provider %s: %w", provider.Name(), err)
		log.WithError(err).Warnf("embedding provider %s failed", provider.Name())

		backoff := s.retryStrategy.NextBackoff(attempt)
		if backoff < 0 {
			s.mu.Lock()
			next := (s.active + 1) % n
			if next == start {
				s.mu.Unlock()
				return pgvector.Vector{}, fmt.Errorf("all embedding providers failed: %w", lastErr)
			}
			s.active = next
			log.Infof("switching embedding provider to %s", s.providers[next].Name())
			s.mu.Unlock()
			attempt = 0
			continue
		}

		select {
		case <-time.After(time.Duration(backoff) * time.Millisecond):
			attempt++
		case <-ctx.Done():
			return pgvector.Vector{}, fmt.Errorf("embedding retry cancelled: %w", ctx.Err())
		}
	}
}
