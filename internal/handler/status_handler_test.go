package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/store"
	"github.com/boddenberg/masrofi-bfa-go/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newStatusRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouter(&stubGateway{}, service.NewStatusService(store.NewMemory(), zap.NewNop()))
}

func TestCreateStatus(t *testing.T) {
	router := newStatusRouter(t)

	rec := serve(router, http.MethodPost, "/api/status", `{"client_name":"expo-app"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got domain.StatusRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := uuid.Parse(got.ID); err != nil {
		t.Errorf("expected UUID id, got %q", got.ID)
	}
	if got.ClientName != "expo-app" || got.Timestamp.IsZero() {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestCreateStatus_MissingClientName(t *testing.T) {
	rec := serve(newStatusRouter(t), http.MethodPost, "/api/status", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateStatus_EmptyClientName(t *testing.T) {
	rec := serve(newStatusRouter(t), http.MethodPost, "/api/status", `{"client_name":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got domain.StatusRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ClientName != "" || got.ID == "" {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestListStatus_LimitClamped(t *testing.T) {
	router := newStatusRouter(t)
	for i := 0; i < 60; i++ {
		serve(router, http.MethodPost, "/api/status", fmt.Sprintf(`{"client_name":"c-%d"}`, i))
	}

	rec := serve(router, http.MethodGet, "/api/status?limit=1000", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []domain.StatusRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) > 50 {
		t.Errorf("expected at most 50 records, got %d", len(got))
	}

	rec = serve(router, http.MethodGet, "/api/status", "")
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if len(got) != 20 {
		t.Errorf("expected default page of 20, got %d", len(got))
	}

	rec = serve(router, http.MethodGet, "/api/status?skip=55&limit=10", "")
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if len(got) != 5 || got[0].ClientName != "c-55" {
		t.Errorf("unexpected page %+v", got)
	}
}

func TestListStatus_EmptyIsArray(t *testing.T) {
	rec := serve(newStatusRouter(t), http.MethodGet, "/api/status", "")
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", body)
	}
}

func TestListStatus_BadParams(t *testing.T) {
	router := newStatusRouter(t)

	for _, q := range []string{"?limit=abc", "?skip=-1", "?limit=-3"} {
		rec := serve(router, http.MethodGet, "/api/status"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestStatus_NoStore(t *testing.T) {
	router := newTestRouter(&stubGateway{}, nil)

	rec := serve(router, http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
