package user

import (
	"time"
)

// User is a marketplace account. Both sides of the marketplace share the
// table; Role distinguishes consumers from providers.
type User struct {
	ID    uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID  string  `gorm:"type:varchar(64);not null;unique" json:"uuid"`
	Name  string  `gorm:"type:varchar(255);not null" json:"name"`
	Email string  `gorm:"type:varchar(255);not null;unique" json:"email"`
	Phone *string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Role  string  `gorm:"type:varchar(20);not null" json:"role"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"` // Soft delete field
}
