package pricing

import (
	"math"
)

// earthRadiusMiles is the mean Earth radius used for great-circle distance.
const earthRadiusMiles = 3958.8

// Rates are the listing's price components. Missing multipliers are zero.
type Rates struct {
	Base      float64
	PerMile   float64
	PerMinute float64
}

// Input carries the trip parameters supplied by the client. DistanceMiles
// wins when present; otherwise distance is derived from the coordinate pairs,
// and treated as zero when those are absent too.
type Input struct {
	DistanceMiles   *float64
	DurationMinutes float64
	PickupLat       *float64
	PickupLng       *float64
	DropoffLat      *float64
	DropoffLng      *float64
}

// Quote computes the booking total, rounded to cents and floored at zero.
// The computation is deterministic: the same rates and input always produce
// the same total.
func Quote(rates Rates, in Input) float64 {
	distance := resolveDistance(in)
	variable := distance*rates.PerMile + in.DurationMinutes*rates.PerMinute
	total := math.Round((rates.Base+variable)*100) / 100
	if total < 0 {
		total = 0
	}
	return total
}

// AmountCents converts a cent-rounded total into smallest-currency units for
// the payment processor.
func AmountCents(total float64) int64 {
	return int64(math.Round(total * 100))
}

func resolveDistance(in Input) float64 {
	if in.DistanceMiles != nil {
		return *in.DistanceMiles
	}
	if in.PickupLat != nil && in.PickupLng != nil && in.DropoffLat != nil && in.DropoffLng != nil {
		return Haversine(*in.PickupLat, *in.PickupLng, *in.DropoffLat, *in.DropoffLng)
	}
	return 0
}

// Haversine returns the great-circle distance in miles between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
