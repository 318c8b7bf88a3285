package service

import (
	"context"
	"time"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/observability"
	"github.com/boddenberg/masrofi-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/advisor")

// Advisor runs the aggregate → prompt → LLM → reconcile pipeline.
type Advisor struct {
	gateway port.LLMGateway
	model   string
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAdvisor creates the advisor. An empty model uses the gateway default.
func NewAdvisor(gateway port.LLMGateway, model string, metrics *observability.Metrics, logger *zap.Logger) *Advisor {
	return &Advisor{
		gateway: gateway,
		model:   model,
		metrics: metrics,
		logger:  logger,
	}
}

// Configured reports whether the LLM credential is present.
func (a *Advisor) Configured() bool {
	return a.gateway.Configured()
}

// Analyze produces the full analysis. Gateway failures are returned; an
// unreadable reply is not an error and yields the canned prose instead.
func (a *Advisor) Analyze(ctx context.Context, req *domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = domain.AnalysisFull
	}
	if !domain.ValidAnalysisType(analysisType) {
		return nil, &domain.ErrValidation{
			Field:   "analysis_type",
			Message: "must be one of full, spending, savings, forecast, tips",
		}
	}

	ctx, span := tracer.Start(ctx, "Advisor.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("analysis.type", analysisType))

	start := time.Now()
	defer func() {
		a.metrics.RecordRequestDuration("analyze", time.Since(start))
	}()

	if analysisType != domain.AnalysisFull {
		a.logger.Info("analysis type not differentiated, running full analysis",
			zap.String("analysis_type", analysisType))
	}

	snapshot := &req.FinancialData
	summary := Aggregate(snapshot)
	prompt := ComposePrompt(summary, snapshot.CurrencyCode(), PromptFull)

	completion, err := a.gateway.Complete(ctx, &domain.CompletionRequest{
		System:    prompt.System,
		Prompt:    prompt.User,
		Model:     a.model,
		SessionID: domain.NewSessionID("analysis"),
	})
	if err != nil {
		a.metrics.IncrAIRequest("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Error("AI analysis failed", zap.Error(err))
		return nil, err
	}
	a.metrics.IncrAIRequest("success")

	result, parsed := Reconcile(completion.Text, summary)
	if !parsed {
		a.metrics.IncrFallback("analysis_parse")
		a.logger.Warn("analysis reply had no JSON object, using raw text",
			zap.String("session_id", completion.SessionID),
			zap.Int("reply_len", len(completion.Text)),
		)
	}
	return result, nil
}

// QuickTips returns up to three tips. It never fails: any problem on the
// way yields the canned tips.
func (a *Advisor) QuickTips(ctx context.Context, snapshot *domain.FinancialSnapshot) *domain.TipsResult {
	ctx, span := tracer.Start(ctx, "Advisor.QuickTips")
	defer span.End()

	start := time.Now()
	defer func() {
		a.metrics.RecordRequestDuration("tips", time.Since(start))
	}()

	summary := Aggregate(snapshot)
	prompt := ComposePrompt(summary, snapshot.CurrencyCode(), PromptTips)

	completion, err := a.gateway.Complete(ctx, &domain.CompletionRequest{
		System:    prompt.System,
		Prompt:    prompt.User,
		Model:     a.model,
		SessionID: domain.NewSessionID("tips"),
	})
	if err != nil {
		a.metrics.IncrAIRequest("error")
		a.metrics.IncrFallback("tips_upstream")
		span.RecordError(err)
		a.logger.Error("tips error, serving canned tips", zap.Error(err))
		return &domain.TipsResult{Tips: FallbackTips()}
	}
	a.metrics.IncrAIRequest("success")

	tips, parsed := ReconcileTips(completion.Text)
	if !parsed {
		a.metrics.IncrFallback("tips_parse")
		a.logger.Warn("tips reply unusable, serving canned tips",
			zap.String("session_id", completion.SessionID))
	}
	return &domain.TipsResult{Tips: tips}
}
