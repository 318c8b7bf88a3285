package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
	"github.com/boddenberg/masrofi-bfa-go/internal/handler"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/llm"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/observability"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/masrofi-bfa-go/internal/infra/store"
	"github.com/boddenberg/masrofi-bfa-go/internal/service"

	"go.uber.org/zap"
)

// mockLLM is an OpenAI-compatible chat completions endpoint.
type mockLLM struct {
	mu       sync.Mutex
	users    []string
	systems  []string
	reply    func(prompt string) string
	failWith int
}

func (m *mockLLM) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User     string `json:"user"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	m.mu.Lock()
	m.users = append(m.users, req.User)
	var prompt string
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			m.systems = append(m.systems, msg.Content)
		} else {
			prompt = msg.Content
		}
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if m.failWith != 0 {
		w.WriteHeader(m.failWith)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"id":     "cmpl-test",
		"object": "chat.completion",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": m.reply(prompt)},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{"prompt_tokens": 300, "completion_tokens": 120, "total_tokens": 420},
	})
}

func newApp(t *testing.T, upstream *mockLLM) (http.Handler, *observability.Metrics) {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	provider := llm.NewOpenAIProvider("sk-integration", server.URL+"/v1", server.Client(), 512)
	gateway := llm.NewGateway(
		llm.Config{APIKey: "sk-integration", DefaultModel: "openai/gpt-4o-mini", Timeout: 5 * time.Second},
		resilience.NewCircuitBreaker("llm-integration", resilience.DefaultConfig()),
		metrics,
		logger,
		provider,
	)

	advisor := service.NewAdvisor(gateway, "", metrics, logger)
	statusSvc := service.NewStatusService(store.NewMemory(), logger)
	return handler.NewRouter(advisor, statusSvc, metrics, logger), metrics
}

func post(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var snapshot = map[string]any{
	"expenses": []map[string]any{
		{"amount": 150, "category": "طعام"},
		{"amount": 50, "category": "مواصلات"},
		{"amount": 200, "category": "طعام"},
	},
	"incomes":            []map[string]any{{"amount": 3000, "source": "راتب"}},
	"debts":              []map[string]any{{"totalAmount": 500, "status": "نشط"}, {"totalAmount": 800, "status": "مسدد"}},
	"budgets":            []map[string]any{},
	"savings_goals":      []map[string]any{{"currentAmount": 1000, "targetAmount": 4000}},
	"recurring_expenses": []map[string]any{{"amount": 45, "isActive": true}, {"amount": 20, "isActive": false}},
	"currency":           "TRY",
}

// TestIntegration_AnalyzeFlow runs aggregate → prompt → OpenAI-compatible upstream → reconcile.
func TestIntegration_AnalyzeFlow(t *testing.T) {
	upstream := &mockLLM{reply: func(string) string {
		return "بالتأكيد! إليك التحليل:\n" +
			`{"analysis": "وضعك المالي مستقر", "insights": ["الطعام أكبر بند"], "recommendations": ["قلل الطلبات الخارجية"], "alerts": [], "forecast": {"savings_rate": 80}}` +
			"\nأتمنى أن يساعدك هذا {بالتوفيق}"
	}}
	router, metrics := newApp(t, upstream)

	rec := post(t, router, "/api/ai/analyze", map[string]any{"financial_data": snapshot, "analysis_type": "full"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var result domain.AnalysisResult
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	_ = json.Unmarshal(raw["analysis"], &result.Analysis)
	_ = json.Unmarshal(raw["insights"], &result.Insights)
	_ = json.Unmarshal(raw["forecast"], &result.Forecast)

	if result.Analysis != "وضعك المالي مستقر" {
		t.Errorf("unexpected analysis %q", result.Analysis)
	}
	if len(result.Insights) != 1 || result.Insights[0] != "الطعام أكبر بند" {
		t.Errorf("unexpected insights %v", result.Insights)
	}
	want := domain.Forecast{MonthlyBalance: 2600, SavingsRate: 33.3, DebtRatio: 16.7}
	if result.Forecast != want {
		t.Errorf("expected %+v, got %+v", want, result.Forecast)
	}
	if string(raw["spending_patterns"]) != `{"طعام":350,"مواصلات":50}` {
		t.Errorf("unexpected spending_patterns %s", raw["spending_patterns"])
	}

	if len(upstream.users) != 1 || !strings.HasPrefix(upstream.users[0], "masrofi-analysis-") {
		t.Errorf("expected a fresh analysis session id, got %v", upstream.users)
	}
	if !strings.Contains(upstream.systems[0], "مستشار مالي محترف") {
		t.Errorf("unexpected persona %q", upstream.systems[0])
	}

	snap := metrics.GetAISnapshot()
	if snap.PromptTokens != 300 || snap.CompletionTokens != 120 {
		t.Errorf("token usage not recorded: %+v", snap)
	}
}

func TestIntegration_TipsFlow(t *testing.T) {
	var prompts []string
	upstream := &mockLLM{reply: func(p string) string {
		prompts = append(prompts, p)
		return `{"tips": ["قلل الطعام", "ادخر أكثر", "سدد الدين", "نصيحة رابعة"]}`
	}}
	router, _ := newApp(t, upstream)

	rec := post(t, router, "/api/ai/tips", map[string]any{"financial_data": snapshot})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got domain.TipsResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Tips) != 3 || got.Tips[0] != "قلل الطعام" {
		t.Errorf("unexpected tips %v", got.Tips)
	}
	if !strings.Contains(prompts[0], "- دخله الشهري: 3000 TRY") {
		t.Errorf("tips prompt missing income line: %q", prompts[0])
	}
	if !strings.HasPrefix(upstream.users[0], "masrofi-tips-") {
		t.Errorf("unexpected session id %q", upstream.users[0])
	}
}

func TestIntegration_UpstreamDown(t *testing.T) {
	upstream := &mockLLM{failWith: http.StatusServiceUnavailable, reply: func(string) string { return "" }}
	router, metrics := newApp(t, upstream)

	rec := post(t, router, "/api/ai/analyze", map[string]any{"financial_data": snapshot})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("analyze: expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "فشل التحليل") {
		t.Errorf("expected localized error, got %s", rec.Body.String())
	}

	rec = post(t, router, "/api/ai/tips", map[string]any{"financial_data": snapshot})
	if rec.Code != http.StatusOK {
		t.Errorf("tips: expected 200, got %d", rec.Code)
	}
	var tips domain.TipsResult
	_ = json.Unmarshal(rec.Body.Bytes(), &tips)
	if len(tips.Tips) != 3 || tips.Tips[0] != "تابع مصاريفك يومياً" {
		t.Errorf("expected canned tips, got %v", tips.Tips)
	}

	if len(upstream.users) != 2 {
		t.Errorf("each request must reach the upstream exactly once, got %d calls", len(upstream.users))
	}
	if snap := metrics.GetAISnapshot(); snap.ErrorRate != 1 {
		t.Errorf("expected all AI requests counted as errors, got %+v", snap)
	}
}

func TestIntegration_StatusFlow(t *testing.T) {
	router, _ := newApp(t, &mockLLM{reply: func(string) string { return "{}" }})

	for _, name := range []string{"ios", "android", "web"} {
		rec := post(t, router, "/api/status", map[string]string{"client_name": name})
		if rec.Code != http.StatusOK {
			t.Fatalf("create: expected 200, got %d", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status?skip=1&limit=1000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var got []domain.StatusRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].ClientName != "android" || got[1].ClientName != "web" {
		t.Errorf("unexpected records %+v", got)
	}
}
