package service

import (
	"github.com/boddenberg/masrofi-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// MaxTips is the number of tips returned by POST /api/ai/tips.
const MaxTips = 3

var (
	fallbackInsights        = []string{"تم تحليل بياناتك المالية"}
	fallbackRecommendations = []string{"استمر في تتبع مصاريفك بانتظام"}
	fallbackTips            = []string{"تابع مصاريفك يومياً", "حدد ميزانية شهرية", "ادخر 20% من دخلك"}
)

// FallbackTips returns a fresh copy of the canned tips.
func FallbackTips() []string {
	return append([]string(nil), fallbackTips...)
}

// Reconcile merges a model reply with the locally computed summary.
// The reported bool is false when no JSON object could be read and the
// canned prose was used instead. Numbers never come from the reply.
func Reconcile(raw string, summary domain.AggregateSummary) (*domain.AnalysisResult, bool) {
	result := &domain.AnalysisResult{
		SpendingPatterns: summary.CategorySpending,
		Forecast:         BuildForecast(summary),
	}

	object, ok := ExtractJSONObject(raw)
	if !ok {
		result.Analysis = raw
		result.Insights = append([]string(nil), fallbackInsights...)
		result.Recommendations = append([]string(nil), fallbackRecommendations...)
		result.Alerts = []string{}
		return result, false
	}

	parsed := gjson.Parse(object)
	if a := parsed.Get("analysis"); a.Type == gjson.String {
		result.Analysis = a.String()
	} else {
		result.Analysis = raw
	}
	result.Insights = stringList(parsed.Get("insights"))
	result.Recommendations = stringList(parsed.Get("recommendations"))
	result.Alerts = stringList(parsed.Get("alerts"))

	return result, true
}

// ReconcileTips reads at most MaxTips tips from a model reply. It reports
// false, with the canned tips, when the reply carries no usable tips.
func ReconcileTips(raw string) ([]string, bool) {
	object, ok := ExtractJSONObject(raw)
	if !ok {
		return FallbackTips(), false
	}

	tips := stringList(gjson.Get(object, "tips"))
	if len(tips) == 0 {
		return FallbackTips(), false
	}
	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}
	return tips, true
}

// BuildForecast derives the forecast block. Rates are percentages rounded half to even to
// one decimal place and are zero unless income is positive.
func BuildForecast(s domain.AggregateSummary) domain.Forecast {
	f := domain.Forecast{
		MonthlyBalance: s.MonthlyBalance().InexactFloat64(),
	}
	if s.TotalIncome.IsPositive() {
		f.SavingsRate = percentOf(s.TotalSavings, s.TotalIncome)
		f.DebtRatio = percentOf(s.TotalActiveDebt, s.TotalIncome)
	}
	return f
}

var hundred = decimal.NewFromInt(100)

func percentOf(part, whole decimal.Decimal) float64 {
	return part.Mul(hundred).Div(whole).RoundBank(1).InexactFloat64()
}

// stringList reads a JSON array of strings. Missing or non-array values give
// an empty list, nulls are dropped and other elements keep their JSON text.
func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		switch item.Type {
		case gjson.Null:
			continue
		case gjson.String:
			out = append(out, item.String())
		default:
			out = append(out, item.Raw)
		}
	}
	return out
}

// ExtractJSONObject returns the first brace-balanced span of text that is a
// valid JSON object. Braces inside string literals are ignored. A balanced
// span that does not parse is skipped and the scan resumes after its '{'.
func ExtractJSONObject(text string) (string, bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		end, ok := matchBrace(text, start)
		if !ok {
			continue
		}
		candidate := text[start : end+1]
		if gjson.Valid(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// matchBrace finds the '}' closing the '{' at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
