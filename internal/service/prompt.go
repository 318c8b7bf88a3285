package service

import (
	"fmt"
	"strings"

	"github.com/boddenberg/masrofi-bfa-go/internal/domain"
)

// PromptMode selects the prompt template.
type PromptMode string

const (
	PromptFull PromptMode = "full"
	PromptTips PromptMode = "tips"
)

// Prompt is a rendered system instruction plus user message.
type Prompt struct {
	System string
	User   string
}

// Personas sent as the system instruction.
const (
	fullPersona = "أنت مستشار مالي محترف تساعد المستخدمين العرب في إدارة أموالهم. قدم نصائح عملية ومفيدة بالعربية."
	tipsPersona = "أنت مستشار مالي. أعطِ نصائح قصيرة ومفيدة."
)

// The reply schemas the reconciler parses. They must not change between calls.
const (
	fullSchema = `{
    "analysis": "التحليل هنا",
    "insights": ["ملاحظة 1", "ملاحظة 2"],
    "recommendations": ["توصية 1", "توصية 2"],
    "alerts": ["تنبيه 1"] أو []
}`
	tipsSchema = `{"tips": ["نصيحة 1", "نصيحة 2", "نصيحة 3"]}`
)

// ComposePrompt renders the prompt for mode from the summary. It is pure.
func ComposePrompt(summary domain.AggregateSummary, currency string, mode PromptMode) Prompt {
	if mode == PromptTips {
		return Prompt{System: tipsPersona, User: tipsPrompt(summary, currency)}
	}
	return Prompt{System: fullPersona, User: fullPrompt(summary, currency)}
}

func fullPrompt(s domain.AggregateSummary, currency string) string {
	var b strings.Builder

	b.WriteString("أنت مستشار مالي ذكي. قم بتحليل البيانات المالية التالية وقدم نصائح مفيدة بالعربية:\n\n")

	b.WriteString("📊 ملخص الوضع المالي:\n")
	fmt.Fprintf(&b, "- إجمالي الدخل: %s %s\n", s.TotalIncome, currency)
	fmt.Fprintf(&b, "- إجمالي المصروفات: %s %s\n", s.TotalExpenses, currency)
	fmt.Fprintf(&b, "- الديون النشطة: %s %s\n", s.TotalActiveDebt, currency)
	fmt.Fprintf(&b, "- المدخرات الحالية: %s %s\n", s.TotalSavings, currency)
	fmt.Fprintf(&b, "- المصاريف المتكررة الشهرية: %s %s\n", s.TotalRecurring, currency)
	fmt.Fprintf(&b, "- الرصيد المتاح: %s %s\n\n", s.MonthlyBalance(), currency)

	b.WriteString("📈 توزيع المصروفات حسب الفئة:\n")
	for _, c := range s.CategorySpending {
		fmt.Fprintf(&b, "- %s: %s %s\n", c.Category, c.Amount, currency)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "عدد المعاملات: %d\n", s.ExpenseCount)
	fmt.Fprintf(&b, "عدد أهداف الادخار: %d\n\n", s.SavingsGoalCount)

	b.WriteString("المطلوب:\n")
	b.WriteString("1. تحليل موجز للوضع المالي (3-4 جمل)\n")
	b.WriteString("2. 3-5 ملاحظات مهمة (insights)\n")
	b.WriteString("3. 3-5 توصيات عملية للتحسين\n")
	b.WriteString("4. أي تنبيهات مهمة إن وجدت\n\n")

	b.WriteString("أجب بصيغة JSON:\n")
	b.WriteString(fullSchema)

	return b.String()
}

func tipsPrompt(s domain.AggregateSummary, currency string) string {
	var b strings.Builder

	b.WriteString("بناءً على أن المستخدم:\n")
	fmt.Fprintf(&b, "- دخله الشهري: %s %s\n", s.TotalIncome, currency)
	fmt.Fprintf(&b, "- مصروفاته: %s %s\n", s.TotalExpenses, currency)
	fmt.Fprintf(&b, "- عدد معاملاته: %d\n\n", s.ExpenseCount)

	b.WriteString("أعطني 3 نصائح سريعة ومفيدة بالعربية (كل نصيحة جملة واحدة فقط). أجب بصيغة JSON:\n")
	b.WriteString(tipsSchema)

	return b.String()
}
