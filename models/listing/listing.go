package listing

import (
	"marketplace-booking/models/user"
	"time"
)

// Listing is a provider's published service offer. The three rate fields feed
// the booking price computation; any of them may be zero.
type Listing struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for provider relationship
	ProviderID uint      `gorm:"not null;index" json:"provider_id"`
	Provider   user.User `gorm:"foreignKey:ProviderID" json:"provider"`

	Title    string `gorm:"type:varchar(255);not null" json:"title"`
	Category string `gorm:"type:varchar(100);not null" json:"category"`

	PriceBase      float64 `gorm:"not null;default:0" json:"price_base"`
	PricePerMile   float64 `gorm:"not null;default:0" json:"price_per_mile"`
	PricePerMinute float64 `gorm:"not null;default:0" json:"price_per_minute"`

	Active bool `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"` // Soft delete field
}
