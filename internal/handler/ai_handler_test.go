package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/handler"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/llm"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/observability"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/masrofi-bfa-go/internal/service"

	"go.uber.org/zap"
)

const scenarioBody = `{
	"financial_data": {
		"expenses": [
			{"amount": 150, "category": "طعام"},
			{"amount": 50, "category": "مواصلات"},
			{"amount": 200, "category": "طعام"}
		],
		"incomes": [{"amount": 3000, "source": "راتب"}],
		"debts": [{"totalAmount": 500, "status": "نشط"}],
		"budgets": [],
		"savings_goals": [{"currentAmount": 1000, "targetAmount": 5000}],
		"recurring_expenses": [],
		"currency": "TRY"
	},
	"analysis_type": "full"
}`

var cannedTips = []string{"تابع مصاريفك يومياً", "حدد ميزانية شهرية", "ادخر 20% من دخلك"}

// newUnconfiguredRouter wires the real gateway with no credential.
func newUnconfiguredRouter() http.Handler {
	metrics := observability.NewMetrics()
	gateway := llm.NewGateway(
		llm.Config{DefaultModel: "gemini/gemini-2.5-flash", Timeout: llm.DefaultTimeout},
		resilience.NewCircuitBreaker("llm", resilience.DefaultConfig()),
		metrics,
		zap.NewNop(),
	)
	advisor := service.NewAdvisor(gateway, "", metrics, zap.NewNop())
	return handler.NewRouter(advisor, nil, metrics, zap.NewNop())
}

func TestAnalyze_Scenario(t *testing.T) {
	router := newTestRouter(&stubGateway{configured: true, text: "```json\n" +
		`{"analysis":"جيد","insights":["a","b","c"],"recommendations":["r"],"alerts":[],"forecast":{"savings_rate":99}}` +
		"\n```"}, nil)

	rec := serve(router, http.MethodPost, "/api/ai/analyze", scenarioBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Analysis         string             `json:"analysis"`
		Insights         []string           `json:"insights"`
		Alerts           []string           `json:"alerts"`
		SpendingPatterns map[string]float64 `json:"spending_patterns"`
		Forecast         domain.Forecast    `json:"forecast"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	want := domain.Forecast{MonthlyBalance: 2600, SavingsRate: 33.3, DebtRatio: 16.7}
	if got.Forecast != want {
		t.Errorf("expected forecast %+v, got %+v", want, got.Forecast)
	}
	if got.SpendingPatterns["طعام"] != 350 || got.SpendingPatterns["مواصلات"] != 50 {
		t.Errorf("unexpected spending patterns %v", got.SpendingPatterns)
	}
	if len(got.Insights) != 3 || got.Alerts == nil {
		t.Errorf("unexpected lists insights=%v alerts=%v", got.Insights, got.Alerts)
	}
	if !strings.Contains(rec.Body.String(), `"spending_patterns":{"طعام":350,"مواصلات":50}`) {
		t.Errorf("spending patterns must keep first-seen order: %s", rec.Body.String())
	}
}

func TestAnalyze_NoCredential(t *testing.T) {
	rec := serve(newUnconfiguredRouter(), http.MethodPost, "/api/ai/analyze", scenarioBody)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(body.Detail, "فشل التحليل: ") {
		t.Errorf("expected localized detail, got %q", body.Detail)
	}
}

func TestAnalyze_UpstreamError(t *testing.T) {
	router := newTestRouter(&stubGateway{configured: true, err: &domain.ErrUpstream{Service: "llm/gemini", Err: errors.New("503")}}, nil)

	rec := serve(router, http.MethodPost, "/api/ai/analyze", scenarioBody)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestAnalyze_BadRequests(t *testing.T) {
	router := newTestRouter(&stubGateway{configured: true, text: "{}"}, nil)

	for name, body := range map[string]string{
		"malformed":      `{"financial_data":`,
		"unknown type":   `{"financial_data":{},"analysis_type":"weather"}`,
		"string amounts": `{"financial_data":{"expenses":[{"amount":"lots"}]}}`,
	} {
		rec := serve(router, http.MethodPost, "/api/ai/analyze", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

func TestTips_NoCredential(t *testing.T) {
	rec := serve(newUnconfiguredRouter(), http.MethodPost, "/api/ai/tips", scenarioBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.TipsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got.Tips, cannedTips) {
		t.Errorf("expected canned tips, got %v", got.Tips)
	}
}

func TestTips_UndecodableBody(t *testing.T) {
	router := newTestRouter(&stubGateway{configured: true, text: `{"tips":["x"]}`}, nil)

	rec := serve(router, http.MethodPost, "/api/ai/tips", `not json`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got domain.TipsResult
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if !reflect.DeepEqual(got.Tips, cannedTips) {
		t.Errorf("expected canned tips, got %v", got.Tips)
	}
}

func TestTips_FromModel(t *testing.T) {
	router := newTestRouter(&stubGateway{configured: true, text: `{"tips":["t1","t2","t3","t4"]}`}, nil)

	rec := serve(router, http.MethodPost, "/api/ai/tips", scenarioBody)
	var got domain.TipsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got.Tips, []string{"t1", "t2", "t3"}) {
		t.Errorf("unexpected tips %v", got.Tips)
	}
}
