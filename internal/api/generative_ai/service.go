package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/dark-devil9/UrNav/app/observability/metrics"
	"github.com/dark-devil9/UrNav/config"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = float32(0.5)
)

var ErrNotConfigured = errors.New("GOOGLE_GEMINI_API_KEY is not configured")

// Generator produces text for a prompt. *AIClient is the Gemini implementation.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

var _ Generator = (*AIClient)(nil)

type AIClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewAIClient returns ErrNotConfigured when no API key is set so callers can
// run on heuristics alone.
func NewAIClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*AIClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewAIClient")
	defer span.End()

	if cfg.APIKey == "" {
		span.SetStatus(codes.Error, "API key not set")
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	span.SetStatus(codes.Ok, "AI client created successfully")
	return &AIClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (ai *AIClient) GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", ai.model),
	))
	defer span.End()

	metrics.Get().LLMRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("model", ai.model)))
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		ai.logger.WarnContext(ctx, "Gemini request failed", slog.Any("error", err))
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	responseText := result.Text()
	span.SetAttributes(attribute.Int("response.length", len(responseText)))
	span.SetStatus(codes.Ok, "Content generated successfully")
	return responseText, nil
}
