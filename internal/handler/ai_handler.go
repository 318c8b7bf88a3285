package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/observability"
	"github.com/boddenberg/masrofi-bfa-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// analysisFailedPrefix is the localized "analysis failed: " prefix of 500 responses.
const analysisFailedPrefix = "فشل التحليل: "

func rootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Masrofi API - مصروفي"})
	}
}

// POST /api/ai/analyze
func analyzeHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "Handler.Analyze")
		defer span.End()

		var req domain.AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		span.SetAttributes(
			attribute.String("analysis.type", req.AnalysisType),
			attribute.Int("expenses.count", len(req.FinancialData.Expenses)),
		)

		result, err := advisor.Analyze(ctx, &req)
		if err != nil {
			var validation *domain.ErrValidation
			if errors.As(err, &validation) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Error("AI analysis error", zap.Error(err))
			writeError(w, http.StatusInternalServerError, analysisFailedPrefix+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// POST /api/ai/tips always answers 200; every failure is served canned tips.
func tipsHandler(advisor *service.Advisor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "Handler.Tips")
		defer span.End()

		var req domain.AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("tips: undecodable body, serving canned tips", zap.Error(err))
			writeJSON(w, http.StatusOK, domain.TipsResult{Tips: service.FallbackTips()})
			return
		}

		writeJSON(w, http.StatusOK, advisor.QuickTips(ctx, &req.FinancialData))
	}
}

// GET /api/metrics/ai
func aiMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetAISnapshot())
	}
}
