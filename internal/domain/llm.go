package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ============================================================
// LLM gateway
// ============================================================

// CompletionRequest is one stateless prompt sent to the LLM gateway.
type CompletionRequest struct {
	System    string // persona / system instruction
	Prompt    string
	Model     string // "provider/model"; empty uses the configured default
	SessionID string // fresh per call, never reused
}

// Completion is the raw text returned by the model plus usage accounting.
type Completion struct {
	Text             string
	Provider         string
	Model            string
	SessionID        string
	PromptTokens     int
	CompletionTokens int
}

// NewSessionID returns a fresh session id such as "masrofi-analysis-<uuid>".
func NewSessionID(mode string) string {
	return fmt.Sprintf("masrofi-%s-%s", mode, uuid.NewString())
}
