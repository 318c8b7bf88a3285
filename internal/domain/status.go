package domain

import "time"

// Page size bounds for GET /api/status.
const (
	DefaultStatusPageSize = 20
	MaxStatusPageSize     = 50
)

// StatusRecord is a client check-in stored by POST /api/status.
// Records are append-only.
type StatusRecord struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatusCreateRequest is the body of POST /api/status.
type StatusCreateRequest struct {
	ClientName *string `json:"client_name"`
}
