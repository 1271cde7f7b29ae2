package booking

import (
	"fmt"
	"strings"
)

// BookingCreateRequest represents the request payload for creating a booking
type BookingCreateRequest struct {
	ListingID           uint     `json:"listing_id"`
	ScheduledAt         string   `json:"scheduled_at"`
	PickupAddress       string   `json:"pickup_address"`
	DropoffAddress      string   `json:"dropoff_address"`
	SpecialInstructions string   `json:"special_instructions"`
	DistanceMiles       *float64 `json:"distance_miles"`
	DurationMinutes     float64  `json:"duration_minutes"`
	PickupLat           *float64 `json:"pickup_lat"`
	PickupLng           *float64 `json:"pickup_lng"`
	DropoffLat          *float64 `json:"dropoff_lat"`
	DropoffLng          *float64 `json:"dropoff_lng"`
}

func (b BookingCreateRequest) Validate() error {
	if b.ListingID == 0 {
		return fmt.Errorf("listing_id is required")
	}
	if strings.TrimSpace(b.ScheduledAt) == "" {
		return fmt.Errorf("scheduled_at is required")
	}
	if strings.TrimSpace(b.DropoffAddress) == "" {
		return fmt.Errorf("dropoff_address is required")
	}
	if b.DistanceMiles != nil && *b.DistanceMiles < 0 {
		return fmt.Errorf("distance_miles must not be negative")
	}
	if b.DurationMinutes < 0 {
		return fmt.Errorf("duration_minutes must not be negative")
	}
	// Coordinates come as pairs or not at all. Half a pair is a client bug.
	if (b.PickupLat == nil) != (b.PickupLng == nil) {
		return fmt.Errorf("pickup coordinates must be sent as a lat/lng pair")
	}
	if (b.DropoffLat == nil) != (b.DropoffLng == nil) {
		return fmt.Errorf("dropoff coordinates must be sent as a lat/lng pair")
	}
	return nil
}

// BookingCreatedResponse is the payload returned after a successful intake.
type BookingCreatedResponse struct {
	ID           uint   `json:"id"`
	ClientSecret string `json:"client_secret"`
}
