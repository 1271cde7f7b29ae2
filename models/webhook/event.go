package webhook

import (
	"time"
)

// Event is the audit row written for every payment event the reconciler
// sees, including no-ops and ignored types. Written asynchronously; the
// webhook response never waits on it.
type Event struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID    string    `gorm:"type:varchar(255);not null;index" json:"event_id"`
	EventType  string    `gorm:"type:varchar(100);not null" json:"event_type"`
	BookingID  *uint     `gorm:"index" json:"booking_id,omitempty"`
	PaymentRef *string   `gorm:"type:varchar(255)" json:"payment_ref,omitempty"`
	Outcome    string    `gorm:"type:varchar(50);not null" json:"outcome"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the webhook Event model
func (Event) TableName() string {
	return "webhook_events"
}
