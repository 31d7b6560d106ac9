package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"

	"legal-reader/internal/content"
	"legal-reader/internal/logger"
	"legal-reader/internal/telemetry"
)

var ErrCircuitOpen = errors.New("gemini circuit breaker open")

type GeminiClient struct {
	model       string
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	client      *genai.Client
	metrics     *telemetry.Metrics
}

type ClientOptions struct {
	APIKey string
	Model  string
	// MaxRPM is a hard ceiling on request rate, independent of the queue cooldown.
	MaxRPM  int
	Metrics *telemetry.Metrics
}

func NewGeminiClient(ctx context.Context, opts ClientOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash"
	}
	if opts.MaxRPM <= 0 {
		opts.MaxRPM = 60
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	metrics := opts.Metrics
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			metrics.RecordCircuitBreakerState("gemini", to.String())
		},
	})

	return &GeminiClient{
		model:       opts.Model,
		breaker:     breaker,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.MaxRPM)), 1),
		client:      client,
		metrics:     metrics,
	}, nil
}

// FindRelated makes one structured generation call and returns at most three
// titles taken from candidates. Transport failures are returned as errors;
// an unusable response body is an empty result.
func (gc *GeminiClient) FindRelated(ctx context.Context, section content.Section, candidates []string) ([]string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.find_related")
	defer span.End()

	prompt := BuildRelatedPrompt(section, candidates)
	span.SetAttributes(
		attribute.String("gemini.model", gc.model),
		attribute.Int("related.candidates", len(candidates)),
		attribute.Int("gemini.prompt_chars", len(prompt)),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("gemini rate limiter: %w", err)
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.model)
		model.SetTemperature(0.2)
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = relatedSchema

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}

		if resp.UsageMetadata != nil {
			tokens := int64(resp.UsageMetadata.TotalTokenCount)
			span.SetAttributes(attribute.Int64("gemini.total_tokens", tokens))
			gc.metrics.RecordTokensUsed(tokens, gc.model)
		}
		return responseText(resp), nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return nil, ErrCircuitOpen
		}
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	titles := ParseRelatedTitles(result.(string), candidates)
	span.SetAttributes(attribute.Int("related.returned", len(titles)))
	return titles, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// Close the client
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
