package types

import "time"

// LogEntry represents an HTTP request/response log entry to be stored in the database
type LogEntry struct {
	ID              uint
	Method          string
	URL             string
	RequestBody     string
	ResponseBody    string
	RequestHeaders  string
	ResponseHeaders string
	StatusCode      int
	CreatedAt       time.Time
}

// WebhookAuditEntry records the outcome of one processed payment event.
type WebhookAuditEntry struct {
	EventID    string
	EventType  string
	BookingID  uint
	PaymentRef string
	Outcome    string
	CreatedAt  time.Time
}
