package booking

import (
	"marketplace-booking/models/listing"
	"marketplace-booking/models/user"
	"time"
)

// Booking links a consumer, a provider and a listing. Status tracks the
// consumer/provider workflow; PaymentStatus is owned by the payment event
// reconciler and is only ever initialized to pending elsewhere.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign keys for the two marketplace parties
	ConsumerID uint      `gorm:"not null;index" json:"consumer_id"`
	Consumer   user.User `gorm:"foreignKey:ConsumerID" json:"consumer"`
	ProviderID uint      `gorm:"not null;index" json:"provider_id"`
	Provider   user.User `gorm:"foreignKey:ProviderID" json:"provider"`

	// Foreign key for listing relationship; immutable once created
	ListingID uint            `gorm:"not null;index" json:"listing_id"`
	Listing   listing.Listing `gorm:"foreignKey:ListingID" json:"listing"`

	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`

	PickupAddress  *string  `gorm:"type:text" json:"pickup_address,omitempty"`
	PickupLat      *float64 `json:"pickup_lat,omitempty"`
	PickupLng      *float64 `json:"pickup_lng,omitempty"`
	DropoffAddress string   `gorm:"type:text;not null" json:"dropoff_address"`
	DropoffLat     *float64 `json:"dropoff_lat,omitempty"`
	DropoffLng     *float64 `json:"dropoff_lng,omitempty"`

	SpecialInstructions *string `gorm:"type:text" json:"special_instructions,omitempty"`

	// TotalPrice is rounded to cents at intake time.
	TotalPrice float64 `gorm:"not null" json:"total_price"`

	// PaymentIntentID is the processor-side correlation key. Null until the
	// authorization is created, immutable afterwards.
	PaymentIntentID *string       `gorm:"type:varchar(255);uniqueIndex" json:"payment_intent_id,omitempty"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`

	Status BookingStatus `gorm:"type:varchar(20);not null" json:"status"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"` // Soft delete field
}
