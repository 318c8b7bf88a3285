package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/service"

	"go.uber.org/zap"
)

// POST /api/status
func createStatusHandler(svc *service.StatusService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeError(w, http.StatusServiceUnavailable, "status store unavailable")
			return
		}

		var req domain.StatusCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if req.ClientName == nil {
			handleServiceError(w, &domain.ErrValidation{Field: "client_name", Message: "required"}, logger)
			return
		}

		rec, err := svc.Create(r.Context(), *req.ClientName)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// GET /api/status?skip=&limit=
func listStatusHandler(svc *service.StatusService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeError(w, http.StatusServiceUnavailable, "status store unavailable")
			return
		}

		skip, err := queryInt(r, "skip", 0)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		limit, err := queryInt(r, "limit", domain.DefaultStatusPageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		records, err := svc.List(r.Context(), skip, limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}
