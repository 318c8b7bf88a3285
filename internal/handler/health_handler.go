package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/cache"
	"github.com/boddenberg/masrofi-bfa-go/internal/service"

	"go.uber.org/zap"
)

const (
	probeTTL     = 5 * time.Second
	probeTimeout = 2 * time.Second
)

// storeProbe pings the status store, reusing a recent result when there is one.
type storeProbe struct {
	svc     *service.StatusService
	results *cache.TTL[domain.ServiceHealth]
	logger  *zap.Logger
}

func newStoreProbe(svc *service.StatusService, logger *zap.Logger) *storeProbe {
	return &storeProbe{
		svc:     svc,
		results: cache.New[domain.ServiceHealth](probeTTL),
		logger:  logger,
	}
}

func (p *storeProbe) check(ctx context.Context) domain.ServiceHealth {
	return p.results.GetOrLoad("store", func() domain.ServiceHealth {
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		start := time.Now()
		err := p.svc.Ping(ctx)
		h := domain.ServiceHealth{
			Name:        "status-store",
			Status:      "healthy",
			LatencyMs:   time.Since(start).Milliseconds(),
			LastChecked: time.Now().UTC().Format(time.RFC3339),
		}
		if err != nil {
			p.logger.Warn("status store ping failed", zap.Error(err))
			h.Status = "unhealthy"
			h.Detail = err.Error()
		}
		return h
	})
}

func healthzHandler(advisor *service.Advisor, probe *storeProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "masrofi-api", Status: "healthy", LastChecked: now},
		}

		llm := domain.ServiceHealth{Name: "llm-gateway", Status: "healthy", LastChecked: now}
		if advisor == nil || !advisor.Configured() {
			llm.Status = "degraded"
			llm.Detail = "AI service not configured"
		}
		services = append(services, llm)

		if probe != nil {
			services = append(services, probe.check(r.Context()))
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler(probe *storeProbe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if probe != nil {
			if h := probe.check(r.Context()); h.Status != "healthy" {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "reason": h.Detail})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
