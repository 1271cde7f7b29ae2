package logger

import (
	"log"

	log_model "marketplace-booking/models/log"
	webhook_model "marketplace-booking/models/webhook"
	"marketplace-booking/types"

	"gorm.io/gorm"
)

// AsyncLogger persists HTTP request logs and webhook audit entries off the
// request path through buffered channels.
type AsyncLogger struct {
	db       *gorm.DB
	requests chan types.LogEntry
	webhooks chan types.WebhookAuditEntry
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:       db,
		requests: make(chan types.LogEntry, 100),
		webhooks: make(chan types.WebhookAuditEntry, 100),
	}
}

func (logger *AsyncLogger) ProcessLog() {
	log.Println("Starting asynchronous logger...")

	for {
		select {
		case logEntry, ok := <-logger.requests:
			if !ok {
				return
			}
			dbLog := log_model.Log{
				Method:          logEntry.Method,
				URL:             logEntry.URL,
				RequestBody:     logEntry.RequestBody,
				ResponseBody:    logEntry.ResponseBody,
				RequestHeaders:  logEntry.RequestHeaders,
				ResponseHeaders: logEntry.ResponseHeaders,
				StatusCode:      logEntry.StatusCode,
				CreatedAt:       logEntry.CreatedAt,
			}
			if err := logger.db.Create(&dbLog).Error; err != nil {
				log.Printf("Failed to insert new log entry: %v", err)
			}
		case auditEntry, ok := <-logger.webhooks:
			if !ok {
				return
			}
			row := webhook_model.Event{
				EventID:   auditEntry.EventID,
				EventType: auditEntry.EventType,
				Outcome:   auditEntry.Outcome,
				CreatedAt: auditEntry.CreatedAt,
			}
			if auditEntry.BookingID != 0 {
				id := auditEntry.BookingID
				row.BookingID = &id
			}
			if auditEntry.PaymentRef != "" {
				ref := auditEntry.PaymentRef
				row.PaymentRef = &ref
			}
			if err := logger.db.Create(&row).Error; err != nil {
				log.Printf("Failed to insert webhook audit entry: %v", err)
			}
		}
	}
}

// Log pushes an HTTP log entry into the channel
func (logger *AsyncLogger) Log(entry types.LogEntry) {
	logger.requests <- entry
}

// Audit pushes a webhook audit entry into the channel
func (logger *AsyncLogger) Audit(entry types.WebhookAuditEntry) {
	logger.webhooks <- entry
}
