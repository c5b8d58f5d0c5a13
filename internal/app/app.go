package app

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"revue/internal/config"
	"revue/internal/costtracker"
	"revue/internal/sentiment"
	"revue/internal/services"
	"revue/internal/store"
	"revue/internal/store/primary"
	"revue/internal/store/vector"
	"revue/pkg/classifier"
	"revue/pkg/genretag"
)

// App holds every initialized dependency. Commands and API handlers pull
// what they need from here.
type App struct {
	Config *config.Config

	Scorer *sentiment.Scorer

	MovieStore   store.MovieStore
	ReviewStore  store.ReviewStore
	VerdictStore store.VerdictStore
	RatingStore  store.RatingStore
	JobStore     store.JobStore

	JobClient        store.JobClient
	VectorStore      store.VectorStore
	EmbeddingService store.EmbeddingService

	ReviewService    *services.ReviewService
	AnalysisService  *services.AnalysisService
	RecommendService *services.RecommendService

	// GenreSuggester is nil unless an OpenAI API key is configured.
	GenreSuggester genretag.Suggester
	CostTracker    costtracker.Tracker

	primaryStore *primary.StoreImpl
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	app := &App{Config: cfg}

	if err := app.initModel(); err != nil {
		return nil, err
	}
	if err := app.initPrimaryStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initVectorBackend(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	app.initServices()
	app.initGenreSuggester()

	log.Debug("application initialization complete")
	return app, nil
}

func (a *App) initModel() error {
	model, err := classifier.Load(a.Config.Model.Path)
	if err != nil {
		return fmt.Errorf("load sentiment model from %s: %w", a.Config.Model.Path, err)
	}
	a.Scorer = sentiment.NewScorer(model)
	return nil
}

func (a *App) initPrimaryStore(ctx context.Context) error {
	ps, err := primary.NewPrimaryStore(ctx, a.Config.Database.Primary.DSN)
	if err != nil {
		return fmt.Errorf("init primary store: %w", err)
	}
	if err := ps.EnsureSchema(ctx); err != nil {
		ps.Close()
		return err
	}
	a.primaryStore = ps
	a.MovieStore = ps
	a.ReviewStore = ps
	a.VerdictStore = ps
	a.RatingStore = ps
	a.JobStore = ps
	return nil
}

func (a *App) initJobClient() error {
	cfg := a.Config
	jc, err := store.NewAsynqJobClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, a.JobStore)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	a.JobClient = jc
	return nil
}

// initVectorBackend sets up the optional semantic similarity backend. No
// vector DSN means lexical similarity only, which is not an error.
func (a *App) initVectorBackend(ctx context.Context) error {
	cfg := a.Config
	if cfg.Database.Vector.DSN == "" {
		log.Debug("vector store DSN not configured, semantic similarity disabled")
		return nil
	}

	vs, err := vector.NewStore(ctx, cfg.Database.Vector.DSN)
	if err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	a.VectorStore = vs

	var providers []services.EmbeddingProvider
	if openaiProvider, err := services.NewOpenAIProvider(cfg.Embedding.OpenaiApiKey, cfg.Embedding.Model); err != nil {
		log.WithError(err).Warn("initialize OpenAI embedding provider")
	} else {
		providers = append(providers, openaiProvider)
	}
	if geminiProvider, err := services.NewGeminiProvider(cfg.Embedding.GoogleApiKey, cfg.Embedding.GeminiModelName); err != nil {
		log.WithError(err).Warn("initialize Gemini embedding provider")
	} else {
		providers = append(providers, geminiProvider)
	}

	embedding, err := services.NewFallbackEmbeddingService(providers, &services.SimpleRetryStrategy{MaxAttempts: 3, BaseDelayMs: 200})
	if err != nil {
		log.WithError(err).Warn("no usable embedding provider, semantic similarity disabled")
		return nil
	}
	a.EmbeddingService = embedding
	return nil
}

func (a *App) initServices() {
	cfg := a.Config
	a.ReviewService = services.NewReviewService(a.MovieStore, a.ReviewStore, a.Scorer, a.JobClient)
	a.AnalysisService = services.NewAnalysisService(a.MovieStore, a.ReviewStore, a.VerdictStore, a.Scorer)
	a.RecommendService = services.NewRecommendService(a.MovieStore, a.RatingStore, a.VectorStore, a.EmbeddingService, services.RecommendOptions{
		MaxFeatures:   cfg.Similarity.MaxFeatures,
		Weights:       cfg.Recommend.Weights,
		LikeThreshold: cfg.Recommend.LikeThreshold,
	})
}

// initGenreSuggester wires the optional LLM-backed genre suggester. Missing
// API key just leaves it nil.
func (a *App) initGenreSuggester() {
	cfg := a.Config
	apiKey := cfg.Embedding.OpenaiApiKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		log.Debug("no OpenAI API key configured, genre suggestions disabled")
		return
	}
	a.CostTracker = costtracker.NewInMemory()
	client := openai.NewClient(apiKey)
	a.GenreSuggester = genretag.NewLLMSuggester(client, cfg.AI.SuggestModel, "", a.CostTracker, cfg.AI.Pricing)
}

// Close releases held connections. Safe to call on a partially built App.
func (a *App) Close() {
	if a.JobClient != nil {
		if err := a.JobClient.Close(); err != nil {
			log.WithError(err).Warn("close job client")
		}
	}
	if a.VectorStore != nil {
		if err := a.VectorStore.Close(); err != nil {
			log.WithError(err).Warn("close vector store")
		}
	}
	if a.primaryStore != nil {
		if err := a.primaryStore.Close(); err != nil {
			log.WithError(err).Warn("close primary store")
		}
	}
}

func (a *App) cleanupPartialInit() {
	a.Close()
}
