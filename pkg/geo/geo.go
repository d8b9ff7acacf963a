// Package geo provides geographic utility functions for dispatch and routing.
//
// All distance calculations use the Haversine formula on WGS-84 coordinates.
// Travel time is estimated using a constant average speed; there is no road
// network model.
package geo

import (
	"math"

	"github.com/shiva/propdispatch/internal/model"
)

// ─── Constants ──────────────────────────────────────────────

const (
	// EarthRadiusKm is the mean radius of Earth in kilometers.
	EarthRadiusKm = 6371.0

	// EarthRadiusMiles is the mean radius of Earth in statute miles.
	EarthRadiusMiles = 3959.0

	// AverageSpeedMph is the assumed average driving speed between properties.
	AverageSpeedMph = 25.0
)

// ─── Distance ───────────────────────────────────────────────

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(a, b model.Location) float64 {
	return centralAngle(a, b) * EarthRadiusKm
}

// HaversineMiles returns the great-circle distance between two points in miles.
func HaversineMiles(a, b model.Location) float64 {
	return centralAngle(a, b) * EarthRadiusMiles
}

// centralAngle returns the angle in radians subtended by a and b.
func centralAngle(a, b model.Location) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLon*sinLon

	return 2 * math.Asin(math.Sqrt(math.Min(1, h)))
}

// ─── Route Calculations ─────────────────────────────────────

// RouteDistanceMiles returns the total distance of an ordered route in miles.
func RouteDistanceMiles(route []model.Location) float64 {
	total := 0.0
	for i := 0; i < len(route)-1; i++ {
		total += HaversineMiles(route[i], route[i+1])
	}
	return total
}

// DriveHours returns the estimated driving time for a distance in miles.
func DriveHours(miles float64) float64 {
	return miles / AverageSpeedMph
}

// NearestNeighborOrder returns the indices of stops in greedy nearest-neighbour
// order starting from start. Ties go to the lower index, so the result is
// deterministic. stops is not modified.
//
// Complexity: O(S²).
func NearestNeighborOrder(start model.Location, stops []model.Location) []int {
	order := make([]int, 0, len(stops))
	visited := make([]bool, len(stops))
	current := start

	for len(order) < len(stops) {
		best := -1
		bestDist := math.MaxFloat64
		for i, s := range stops {
			if visited[i] {
				continue
			}
			if d := HaversineMiles(current, s); d < bestDist {
				best = i
				bestDist = d
			}
		}
		visited[best] = true
		order = append(order, best)
		current = stops[best]
	}

	return order
}

// ─── Helpers ────────────────────────────────────────────────

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
