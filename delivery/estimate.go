// Package delivery derives distance, fee and ETA for an order from the
// restaurant and customer coordinates. Everything here is pure.
package delivery

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Shygul22/foodiempt-sub001/models"
)

const (
	EarthRadiusKm = 6371

	BaseFee     = 15
	PerKmRate   = 5
	MaxFee      = 99
	PrepTime    = 15  // minutes
	KmPerMinute = 0.5 // 30 km/h
)

// ETA is a coarse delivery time bucket shown to customers.
type ETA string

const (
	ETA10To20 ETA = "10-20 min"
	ETA20To30 ETA = "20-30 min"
	ETA30To45 ETA = "30-45 min"
	ETA45To60 ETA = "45-60 min"
	ETAOver60 ETA = "60+ min"
)

// DistanceKm returns the haversine great-circle distance between a and b.
func DistanceKm(a, b models.Coordinate) float64 {
	lat1Rad := toRadians(a.Latitude)
	lat2Rad := toRadians(b.Latitude)
	deltaLat := toRadians(b.Latitude - a.Latitude)
	deltaLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// DeliveryFee charges a base fee plus a per started kilometre, capped at MaxFee.
func DeliveryFee(distanceKm float64) int {
	fee := BaseFee + math.Ceil(distanceKm)*PerKmRate
	return int(math.Min(fee, MaxFee))
}

// TravelMinutes is the total minutes from order to door: prep plus travel.
// It stays a float so far-off inputs cannot wrap around an int.
func TravelMinutes(distanceKm float64) float64 {
	return PrepTime + math.Ceil(distanceKm/KmPerMinute)
}

func EstimatedDeliveryTime(distanceKm float64) ETA {
	total := TravelMinutes(distanceKm)

	switch {
	case total <= 20:
		return ETA10To20
	case total <= 30:
		return ETA20To30
	case total <= 45:
		return ETA30To45
	case total <= 60:
		return ETA45To60
	default:
		return ETAOver60
	}
}

// FormatDistance renders whole meters below one kilometre, otherwise km to one
// decimal. Kilometres are rounded from the exact binary value with ties going
// up, so 1.25 reads "1.3 km" while 1.15 (stored just below) reads "1.1 km".
func FormatDistance(distanceKm float64) string {
	if distanceKm < 1 {
		return fmt.Sprintf("%d m", int(math.Round(distanceKm*1000)))
	}
	if math.IsInf(distanceKm, 0) || math.IsNaN(distanceKm) {
		return fmt.Sprintf("%.1f km", distanceKm)
	}
	return decimal.NewFromFloatWithExponent(distanceKm, exactExponent).StringFixed(1) + " km"
}

// exactExponent is below the smallest binary exponent of a float64, which
// makes NewFromFloatWithExponent keep every digit.
const exactExponent = -1100

// Estimate bundles everything the checkout and estimate endpoints show.
type Estimate struct {
	DistanceKm  float64 `json:"distance_km"`
	Distance    string  `json:"distance"`
	DeliveryFee int     `json:"delivery_fee"`
	ETA         ETA     `json:"eta"`
}

func Estimated(from, to models.Coordinate) Estimate {
	d := DistanceKm(from, to)
	return Estimate{
		DistanceKm:  d,
		Distance:    FormatDistance(d),
		DeliveryFee: DeliveryFee(d),
		ETA:         EstimatedDeliveryTime(d),
	}
}
