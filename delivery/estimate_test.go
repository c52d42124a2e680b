package delivery

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Shygul22/foodiempt-sub001/models"
)

func TestDistanceKm(t *testing.T) {
	origin := models.Coordinate{Latitude: 0, Longitude: 0}

	t.Run("identical points", func(t *testing.T) {
		a := models.Coordinate{Latitude: 19.076, Longitude: 72.8777}
		assert.Equal(t, 0.0, DistanceKm(a, a))
	})

	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		d := DistanceKm(origin, models.Coordinate{Latitude: 0, Longitude: 1})
		assert.InDelta(t, 111.19, d, 0.01)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := models.Coordinate{Latitude: 28.6139, Longitude: 77.209}
		b := models.Coordinate{Latitude: 19.076, Longitude: 72.8777}
		assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
		assert.InDelta(t, 1148, DistanceKm(a, b), 5)
	})
}

func TestDeliveryFee(t *testing.T) {
	tests := []struct {
		distance float64
		want     int
	}{
		{0, 15},
		{0.1, 20},
		{1, 20},
		{3.2, 35},
		{16, 95},
		{16.5, 99},
		{17, 99},
		{20, 99},
		{500, 99},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DeliveryFee(tt.distance), "distance %v", tt.distance)
	}
}

func TestDeliveryFeeMonotonic(t *testing.T) {
	prev := DeliveryFee(0)
	for d := 0.0; d < 30; d += 0.25 {
		fee := DeliveryFee(d)
		assert.GreaterOrEqual(t, fee, prev)
		assert.LessOrEqual(t, fee, MaxFee)
		prev = fee
	}
}

func TestEstimatedDeliveryTime(t *testing.T) {
	tests := []struct {
		distance float64
		want     ETA
	}{
		{0, ETA10To20},
		{2.5, ETA10To20},  // 15 + 5 = 20
		{2.6, ETA20To30},  // 15 + 6
		{7.5, ETA20To30},  // 15 + 15 = 30
		{10, ETA30To45},   // 15 + 20 = 35
		{15, ETA30To45},   // 15 + 30 = 45
		{22.5, ETA45To60}, // 15 + 45 = 60
		{22.6, ETAOver60},
		{100, ETAOver60},
		{1e6, ETAOver60},
		{1e19, ETAOver60},
		{1e300, ETAOver60},
		{math.MaxFloat64, ETAOver60},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimatedDeliveryTime(tt.distance), "distance %v", tt.distance)
	}
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "450 m", FormatDistance(0.45))
	assert.Equal(t, "0 m", FormatDistance(0))
	assert.Equal(t, "1000 m", FormatDistance(0.9999))
	assert.Equal(t, "1.0 km", FormatDistance(1))
	assert.Equal(t, "2.4 km", FormatDistance(2.37))
	assert.Equal(t, "111.2 km", FormatDistance(111.19))
}

func TestFormatDistanceRoundsTiesUp(t *testing.T) {
	tests := []struct {
		distance float64
		want     string
	}{
		{1.25, "1.3 km"},
		{2.25, "2.3 km"},
		{3.75, "3.8 km"},
		{1.05, "1.1 km"}, // stored as 1.0500000000000000444
		{1.15, "1.1 km"}, // stored as 1.1499999999999999112
		{10.45, "10.4 km"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDistance(tt.distance), "distance %v", tt.distance)
	}
}

func TestEstimated(t *testing.T) {
	from := models.Coordinate{Latitude: 0, Longitude: 0}
	to := models.Coordinate{Latitude: 0, Longitude: 0.01}

	e := Estimated(from, to)
	assert.InDelta(t, 1.112, e.DistanceKm, 0.001)
	assert.Equal(t, "1.1 km", e.Distance)
	assert.Equal(t, 25, e.DeliveryFee)
	assert.Equal(t, ETA10To20, e.ETA)
}

func TestNearestCourier(t *testing.T) {
	pickup := models.Coordinate{Latitude: 40.7128, Longitude: -74.006}
	couriers := []models.Courier{
		{ID: "far", Location: models.Coordinate{Latitude: 40.8, Longitude: -74.1}, Available: true},
		{ID: "busy", Location: pickup, Available: false},
		{ID: "near", Location: models.Coordinate{Latitude: 40.713, Longitude: -74.007}, Available: true},
	}

	c, ok := NearestCourier(pickup, couriers)
	assert.True(t, ok)
	assert.Equal(t, "near", c.ID)

	_, ok = NearestCourier(pickup, couriers[1:2])
	assert.False(t, ok)
}
