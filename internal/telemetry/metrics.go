package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics. A nil *Metrics records nothing.
type Metrics struct {
	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	RelatedLookups      metric.Int64Counter
	RemoteCalls         metric.Int64Counter
	RemoteCallDuration  metric.Float64Histogram
	QueueWait           metric.Float64Histogram
	TokensUsed          metric.Int64Counter
	CircuitBreakerState metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("legal-reader")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	relatedLookups, err := meter.Int64Counter(
		"related.lookups.total",
		metric.WithDescription("Related-section lookups by cache outcome"),
	)
	if err != nil {
		return nil, err
	}

	remoteCalls, err := meter.Int64Counter(
		"related.remote_calls.total",
		metric.WithDescription("Remote relevance calls by outcome"),
	)
	if err != nil {
		return nil, err
	}

	remoteCallDuration, err := meter.Float64Histogram(
		"related.remote_call.duration",
		metric.WithDescription("Remote relevance call duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	queueWait, err := meter.Float64Histogram(
		"related.queue.wait",
		metric.WithDescription("Time a related-sections job waited in the queue in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsed, err := meter.Int64Counter(
		"gemini.tokens.used",
		metric.WithDescription("Total Gemini tokens used"),
	)
	if err != nil {
		return nil, err
	}

	circuitBreakerState, err := meter.Int64Counter(
		"circuit_breaker.state_changes",
		metric.WithDescription("Circuit breaker state changes"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:      requestCounter,
		RequestDuration:     requestDuration,
		RelatedLookups:      relatedLookups,
		RemoteCalls:         remoteCalls,
		RemoteCallDuration:  remoteCallDuration,
		QueueWait:           queueWait,
		TokensUsed:          tokensUsed,
		CircuitBreakerState: circuitBreakerState,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordRelatedLookup records whether a lookup hit the cache, the store, or was queued.
func (m *Metrics) RecordRelatedLookup(document, outcome string) {
	if m == nil {
		return
	}
	m.RelatedLookups.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("document", document),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) RecordRemoteCall(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.RemoteCalls.Add(context.Background(), 1, attrs)
	m.RemoteCallDuration.Record(context.Background(), duration.Seconds(), attrs)
}

func (m *Metrics) RecordQueueWait(wait time.Duration) {
	if m == nil {
		return
	}
	m.QueueWait.Record(context.Background(), wait.Seconds())
}

// RecordTokensUsed records Gemini token usage
func (m *Metrics) RecordTokensUsed(tokens int64, model string) {
	if m == nil {
		return
	}
	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(
		attribute.String("gemini.model", model),
		attribute.String("service", "gemini"),
	))
}

// RecordCircuitBreakerState records circuit breaker state changes
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("state", state),
	))
}
