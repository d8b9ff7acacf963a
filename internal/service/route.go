package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shiva/propdispatch/config"
	"github.com/shiva/propdispatch/internal/model"
	"github.com/shiva/propdispatch/pkg/geo"
)

const (
	// HoursPerJob is the on-site time budgeted for each job.
	HoursPerJob = 2.0

	// PlaceholderMilesPerJob is the flat travel estimate used by the
	// placeholder strategy.
	PlaceholderMilesPerJob = 10.0
)

// RouteOptimizer orders a provider's daily schedule and estimates effort.
//
// Strategies:
//   - placeholder: schedule order unchanged; HoursPerJob and
//     PlaceholderMilesPerJob per job.
//   - nearest_neighbor: jobs stay grouped by priority tier; within a tier a
//     greedy nearest-neighbour walk over property coordinates. Distance is
//     the Haversine path length; time adds drive time to HoursPerJob per job.
type RouteOptimizer struct {
	schedules *ScheduleService
	providers ProviderStore
	strategy  string
}

// NewRouteOptimizer creates a route optimizer for the given strategy.
func NewRouteOptimizer(schedules *ScheduleService, providers ProviderStore, strategy string) (*RouteOptimizer, error) {
	switch strategy {
	case config.RoutePlaceholder, config.RouteNearestNeighbor:
	default:
		return nil, fmt.Errorf("route: unknown strategy %q", strategy)
	}
	return &RouteOptimizer{schedules: schedules, providers: providers, strategy: strategy}, nil
}

// OptimizeRoute returns the ordered itinerary for the provider's day.
func (o *RouteOptimizer) OptimizeRoute(ctx context.Context, providerID int64, date time.Time) (*model.Route, error) {
	schedule, err := o.schedules.DailySchedule(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	route := &model.Route{
		ProviderID: providerID,
		Date:       schedule.Date,
		Strategy:   o.strategy,
	}

	if o.strategy == config.RoutePlaceholder {
		n := float64(len(schedule.Jobs))
		route.OptimizedSchedule = schedule.Jobs
		route.EstimatedTotalHours = HoursPerJob * n
		route.TotalDistanceMiles = PlaceholderMilesPerJob * n
		return route, nil
	}

	provider, err := o.providers.GetProvider(ctx, providerID)
	if err != nil {
		return nil, classifyError(err, ErrProviderNotFound)
	}

	ordered, miles := nearestNeighborByTier(schedule.Jobs, provider.BaseLocation)
	route.OptimizedSchedule = ordered
	route.TotalDistanceMiles = round2(miles)
	route.EstimatedTotalHours = round2(HoursPerJob*float64(len(ordered)) + geo.DriveHours(miles))
	return route, nil
}

// nearestNeighborByTier reorders jobs (already priority-sorted) tier by tier.
// Jobs without coordinates keep their relative order at the end of their
// tier. It returns the new order and the path length in miles.
func nearestNeighborByTier(jobs []model.ScheduledJob, start *model.Location) ([]model.ScheduledJob, float64) {
	ordered := make([]model.ScheduledJob, 0, len(jobs))
	var path []model.Location
	if start != nil {
		path = append(path, *start)
	}

	for i := 0; i < len(jobs); {
		// Collect one priority tier.
		j := i
		for j < len(jobs) && jobs[j].Priority.Rank() == jobs[i].Priority.Rank() {
			j++
		}
		tier := jobs[i:j]
		i = j

		var (
			located   []model.ScheduledJob
			stops     []model.Location
			unlocated []model.ScheduledJob
		)
		for _, job := range tier {
			if job.Property.Location == nil {
				unlocated = append(unlocated, job)
				continue
			}
			located = append(located, job)
			stops = append(stops, *job.Property.Location)
		}

		if len(stops) > 0 {
			from := stops[0]
			if len(path) > 0 {
				from = path[len(path)-1]
			}
			for _, idx := range geo.NearestNeighborOrder(from, stops) {
				ordered = append(ordered, located[idx])
				path = append(path, stops[idx])
			}
		}
		ordered = append(ordered, unlocated...)
	}

	return ordered, geo.RouteDistanceMiles(path)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
