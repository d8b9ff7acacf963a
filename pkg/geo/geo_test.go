package geo

import (
	"math"
	"testing"

	"github.com/shiva/propdispatch/internal/model"
)

func TestHaversineMiles_SamePoint(t *testing.T) {
	loc := model.Location{Lat: 42.8711, Lon: -97.3973}
	got := HaversineMiles(loc, loc)
	if got != 0 {
		t.Errorf("HaversineMiles(same point) = %v, want 0", got)
	}
}

func TestHaversineMiles_KnownDistance(t *testing.T) {
	// Yankton, SD to Sioux Falls, SD (~57 miles great-circle)
	yankton := model.Location{Lat: 42.8711, Lon: -97.3973}
	siouxFalls := model.Location{Lat: 43.5446, Lon: -96.7311}
	got := HaversineMiles(yankton, siouxFalls)
	wantMin, wantMax := 55.0, 65.0
	if got < wantMin || got > wantMax {
		t.Errorf("HaversineMiles(Yankton→Sioux Falls) = %.2f mi, want between %.1f and %.1f", got, wantMin, wantMax)
	}
}

func TestHaversineKmMatchesMiles(t *testing.T) {
	a := model.Location{Lat: 40.7128, Lon: -74.0060}
	b := model.Location{Lat: 51.5074, Lon: -0.1278}
	ratio := HaversineKm(a, b) / HaversineMiles(a, b)
	if math.Abs(ratio-EarthRadiusKm/EarthRadiusMiles) > 1e-9 {
		t.Errorf("km/mi ratio = %v, want %v", ratio, EarthRadiusKm/EarthRadiusMiles)
	}
}

func TestRouteDistanceMiles(t *testing.T) {
	route := []model.Location{
		{Lat: 42.87, Lon: -97.39},
		{Lat: 42.88, Lon: -97.40},
		{Lat: 42.90, Lon: -97.41},
	}
	got := RouteDistanceMiles(route)
	want := HaversineMiles(route[0], route[1]) + HaversineMiles(route[1], route[2])
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("RouteDistanceMiles = %v, want %v", got, want)
	}
	if RouteDistanceMiles(route[:1]) != 0 {
		t.Errorf("RouteDistanceMiles(single stop) should be 0")
	}
}

func TestDriveHours(t *testing.T) {
	if got := DriveHours(50); got != 2 {
		t.Errorf("DriveHours(50) = %v, want 2", got)
	}
}

func TestNearestNeighborOrder(t *testing.T) {
	start := model.Location{Lat: 0, Lon: 0}
	stops := []model.Location{
		{Lat: 0, Lon: 3}, // far
		{Lat: 0, Lon: 1}, // nearest to start
		{Lat: 0, Lon: 2},
	}
	got := NearestNeighborOrder(start, stops)
	want := []int{1, 2, 0}
	if len(got) != len(want) {
		t.Fatalf("NearestNeighborOrder len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NearestNeighborOrder = %v, want %v", got, want)
			break
		}
	}
}

func TestNearestNeighborOrder_TieKeepsLowerIndex(t *testing.T) {
	start := model.Location{Lat: 0, Lon: 0}
	stops := []model.Location{
		{Lat: 0, Lon: 1},
		{Lat: 0, Lon: -1},
	}
	got := NearestNeighborOrder(start, stops)
	if got[0] != 0 {
		t.Errorf("NearestNeighborOrder tie = %v, want index 0 first", got)
	}
}

func TestNearestNeighborOrder_Empty(t *testing.T) {
	if got := NearestNeighborOrder(model.Location{}, nil); len(got) != 0 {
		t.Errorf("NearestNeighborOrder(nil) = %v, want empty", got)
	}
}
