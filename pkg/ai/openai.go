package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "labrec",
		Subsystem: "ai",
		Name:      "suggestion_duration_seconds",
		Help:      "Duration of AI suggestion requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "labrec",
		Subsystem: "ai",
		Name:      "suggestion_failures_total",
		Help:      "Number of AI suggestion failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI assistant.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIAssistant implements Assistant against the OpenAI chat completion API.
type OpenAIAssistant struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAssistant builds a new assistant using the provided configuration.
func NewOpenAIAssistant(cfg OpenAIConfig) (*OpenAIAssistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIAssistant{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/algolab-dev/labrec-api/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// Suggest sends the draft to OpenAI and parses the structured response.
func (a *OpenAIAssistant) Suggest(parent context.Context, input SuggestionInput) (SuggestionResult, error) {
	ctx, span := a.tracer.Start(parent, "openai.suggest", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: assistantSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildSuggestionPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SuggestionResult{}, fmt.Errorf("openai suggest: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SuggestionResult{}, err
	}

	result, err := parseSuggestionResponse(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return SuggestionResult{}, err
	}

	result.Model = a.cfg.Model
	return result, nil
}

func assistantSystemPrompt() string {
	return "You are a teaching assistant reviewing a student's algorithm draft before their teacher does. " +
		"Respond with a JSON object containing summary (one sentence) and suggestions (array of short, " +
		"concrete improvements). Never write the solution for the student."
}

func buildSuggestionPrompt(input SuggestionInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Assignment\n")
	builder.WriteString(input.ProgramTitle)
	builder.WriteString("\n\n## Description\n")
	builder.WriteString(input.Description)
	if input.Constraints != "" {
		builder.WriteString("\n\n## Constraints\n")
		builder.WriteString(input.Constraints)
	}
	builder.WriteString("\n\n## Student Draft\n")
	builder.WriteString(input.Draft)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseSuggestionResponse(content string) (SuggestionResult, error) {
	var result SuggestionResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return SuggestionResult{}, fmt.Errorf("parse suggestion json: %w", err)
	}

	return result, nil
}
