package genretag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"revue/internal/config"
	"revue/internal/costtracker"
)

// DefaultPrompt asks for strict JSON so the response can be parsed without
// scraping prose.
const DefaultPrompt = `Suggest up to four genres for the movie "{{TITLE}}" ({{YEAR}}).
Overview: {{OVERVIEW}}
Respond with JSON only, in the form {"genres": ["..."], "confidence": 0.0}.`

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMSuggester implements Suggester over an OpenAI-compatible chat API.
type LLMSuggester struct {
	client         chatClient
	model          string
	promptTemplate string

	costTracker costtracker.Tracker
	pricing     map[string]config.PricingInfo
}

// NewLLMSuggester builds a suggester. tracker and pricing are optional; when
// both are set every call records its estimated cost.
func NewLLMSuggester(client chatClient, model, prompt string, tracker costtracker.Tracker, pricing map[string]config.PricingInfo) *LLMSuggester {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &LLMSuggester{
		client:         client,
		model:          model,
		promptTemplate: prompt,
		costTracker:    tracker,
		pricing:        pricing,
	}
}

func (s *LLMSuggester) Suggest(ctx context.Context, req Request) (Suggestion, error) {
	if s.client == nil {
		return Suggestion{}, fmt.Errorf("genre suggester has no chat client configured")
	}

	prompt := s.promptTemplate
	prompt = strings.ReplaceAll(prompt, "{{TITLE}}", req.Title)
	prompt = strings.ReplaceAll(prompt, "{{YEAR}}", fmt.Sprintf("%d", req.Year))
	prompt = strings.ReplaceAll(prompt, "{{OVERVIEW}}", req.Overview)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return Suggestion{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Suggestion{}, fmt.Errorf("no choices returned from chat API")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var parsed struct {
		Genres     []string `json:"genres"`
		Confidence float64  `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return Suggestion{}, fmt.Errorf("parse suggestion response as JSON: %w\nresponse content: %s", err, content)
	}
	if parsed.Confidence == 0 {
		parsed.Confidence = 1.0
	}

	s.recordCost(ctx, req.Title, resp.Usage)

	return Suggestion{Genres: parsed.Genres, Confidence: parsed.Confidence}, nil
}

func (s *LLMSuggester) recordCost(ctx context.Context, title string, usage openai.Usage) {
	if s.costTracker == nil || usage.TotalTokens == 0 {
		return
	}
	var cost float64
	if price, ok := s.pricing[s.model]; ok {
		cost = float64(usage.PromptTokens)*price.InputPerToken +
			float64(usage.CompletionTokens)*price.OutputPerToken
	} else {
		log.Warnf("no pricing info for model %q, recording zero cost", s.model)
	}
	event := costtracker.Event{
		Operation:    "genre_suggest",
		Model:        s.model,
		InputTokens:  usage.PromptTokens,
		OutputTokens: usage.CompletionTokens,
		AmountUSD:    cost,
	}
	if err := s.costTracker.Record(ctx, event); err != nil {
		log.WithError(err).Warnf("record usage for genre suggestion %q", title)
	}
}
