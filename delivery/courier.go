package delivery

import (
	"math"

	"github.com/Shygul22/foodiempt-sub001/models"
)

// NearestCourier picks the closest available courier to the pickup point.
func NearestCourier(pickup models.Coordinate, couriers []models.Courier) (models.Courier, bool) {
	var nearest models.Courier
	found := false
	minDistance := math.MaxFloat64

	for _, c := range couriers {
		if !c.Available {
			continue
		}

		dist := DistanceKm(pickup, c.Location)
		if dist < minDistance {
			minDistance = dist
			nearest = c
			found = true
		}
	}
	return nearest, found
}
