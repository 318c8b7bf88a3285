package observability

import (
	"time"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	tokensUsed      *prometheus.CounterVec
	aiRequests      *prometheus.CounterVec
	aiFallbacks     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "masrofi_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masrofi_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masrofi_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
		aiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masrofi_ai_requests_total",
				Help: "Total AI analysis and tips requests by outcome.",
			},
			[]string{"status"},
		),
		aiFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "masrofi_ai_fallbacks_total",
				Help: "Total canned AI responses served, by reason.",
			},
			[]string{"kind"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// IncrAIRequest increments the AI request counter with a status label
// ("success" or "error").
func (m *Metrics) IncrAIRequest(status string) {
	m.aiRequests.WithLabelValues(status).Inc()
}

// IncrFallback counts a canned response ("analysis_parse", "tips_parse", "tips_upstream").
func (m *Metrics) IncrFallback(kind string) {
	m.aiFallbacks.WithLabelValues(kind).Inc()
}

// GetAISnapshot returns a snapshot of AI-related metrics suitable for the
// GET /api/metrics/ai endpoint.
func (m *Metrics) GetAISnapshot() *domain.AIMetrics {
	promptTokens := getCounterValue(m.tokensUsed, "prompt")
	completionTokens := getCounterValue(m.tokensUsed, "completion")
	successCount := getCounterValue(m.aiRequests, "success")
	errorCount := getCounterValue(m.aiRequests, "error")
	fallbacks := getCounterValue(m.aiFallbacks, "analysis_parse") +
		getCounterValue(m.aiFallbacks, "tips_parse") +
		getCounterValue(m.aiFallbacks, "tips_upstream")

	totalRequests := successCount + errorCount
	avgTokens := float64(0)
	errorRate := float64(0)
	fallbackRate := float64(0)

	if totalRequests > 0 {
		avgTokens = (promptTokens + completionTokens) / totalRequests
		errorRate = errorCount / totalRequests
		fallbackRate = fallbacks / totalRequests
	}

	return &domain.AIMetrics{
		TotalRequests:       int64(totalRequests),
		ErrorRate:           errorRate,
		FallbackRate:        fallbackRate,
		AvgTokensPerRequest: avgTokens,
		PromptTokens:        int64(promptTokens),
		CompletionTokens:    int64(completionTokens),
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
