package config

import (
	"fmt"

	"github.com/spf13/viper"

	"revue/internal/recommend"
)

type Config struct {
	Database struct {
		Primary struct {
			DSN string `mapstructure:"dsn"`
		} `mapstructure:"primary"`
		// Vector is the pgvector DSN for the optional semantic
		// similarity backend.
		Vector struct {
			DSN string `mapstructure:"dsn"`
		} `mapstructure:"vector"`
	} `mapstructure:"database"`

	Model struct {
		// Path of the trained sentiment artifact (JSON).
		Path string `mapstructure:"path"`
	} `mapstructure:"model"`

	Similarity struct {
		MaxFeatures  int `mapstructure:"max_features"`
		DefaultLimit int `mapstructure:"default_limit"`
	} `mapstructure:"similarity"`

	Recommend struct {
		Weights recommend.Weights `mapstructure:"weights"`
		// LikeThreshold marks a historical rating as a "like" when
		// building user profiles.
		LikeThreshold float64 `mapstructure:"like_threshold"`
	} `mapstructure:"recommend"`

	Embedding struct {
		Model           string `mapstructure:"model"`
		OpenaiApiKey    string `mapstructure:"openai_api_key"`
		GoogleApiKey    string `mapstructure:"google_api_key"`
		GeminiModelName string `mapstructure:"gemini_model_name"`
		Dimension       int    `mapstructure:"dimension"`
	} `mapstructure:"embedding"`

	AI struct {
		// SuggestModel is the chat model used for genre suggestions.
		SuggestModel string `mapstructure:"suggest_model"`
		// Pricing is keyed by model name and feeds cost tracking; models
		// without an entry are tracked with a zero cost.
		Pricing map[string]PricingInfo `mapstructure:"pricing"`
	} `mapstructure:"ai"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`
}

// PricingInfo holds per-token USD prices for one model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

// LoadConfig reads config.yaml from the working directory, then lets
// environment variables override. A missing config file is fine; defaults
// and env vars carry the rest.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.BindEnv("embedding.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("embedding.google_api_key", "GEMINI_API_KEY")
	viper.BindEnv("database.primary.dsn", "REVUE_DATABASE_DSN")

	viper.SetDefault("model.path", "saved_models/sentiment_model.json")
	viper.SetDefault("similarity.max_features", 10000)
	viper.SetDefault("similarity.default_limit", 10)
	viper.SetDefault("recommend.weights.content", recommend.DefaultWeights.Content)
	viper.SetDefault("recommend.weights.collab", recommend.DefaultWeights.Collab)
	viper.SetDefault("recommend.weights.sentiment", recommend.DefaultWeights.Sentiment)
	viper.SetDefault("recommend.like_threshold", 4.0)
	viper.SetDefault("ai.suggest_model", "gpt-4o-mini")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("worker.concurrency", 4)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
