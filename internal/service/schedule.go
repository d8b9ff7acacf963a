package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shiva/propdispatch/internal/model"
	"github.com/shiva/propdispatch/internal/repository"
)

// DateLayout is the calendar date format used by schedules and routes.
const DateLayout = "2006-01-02"

// ScheduleService builds a provider's daily job list.
type ScheduleService struct {
	jobs      JobStore
	providers ProviderStore
	loc       *time.Location
}

// NewScheduleService creates a schedule service. Day boundaries are computed
// in loc (UTC when nil).
func NewScheduleService(jobs JobStore, providers ProviderStore, loc *time.Location) *ScheduleService {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleService{jobs: jobs, providers: providers, loc: loc}
}

// Location returns the time zone used for day boundaries.
func (s *ScheduleService) Location() *time.Location {
	return s.loc
}

// DayWindow returns [midnight, next midnight) for the calendar day of date in loc.
func DayWindow(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// DailySchedule returns the provider's assigned and in-progress jobs whose
// assigned_at falls on date, ordered urgent → low, then by requested_at.
// A day without jobs is an empty schedule, not an error.
func (s *ScheduleService) DailySchedule(ctx context.Context, providerID int64, date time.Time) (*model.Schedule, error) {
	if _, err := s.providers.GetProvider(ctx, providerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, classifyError(err, ErrProviderNotFound)
	}

	start, end := DayWindow(date, s.loc)

	jobs, err := s.jobs.ListScheduledJobs(ctx, providerID, start, end)
	if err != nil {
		return nil, classifyError(err, ErrProviderNotFound)
	}
	if jobs == nil {
		jobs = []model.ScheduledJob{}
	}
	sortJobs(jobs)

	return &model.Schedule{
		ProviderID: providerID,
		Date:       start.Format(DateLayout),
		TotalJobs:  len(jobs),
		Jobs:       jobs,
	}, nil
}

// sortJobs orders by priority rank, then requested_at, then request ID.
func sortJobs(jobs []model.ScheduledJob) {
	sort.SliceStable(jobs, func(i, j int) bool {
		a, b := jobs[i], jobs[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra < rb
		}
		if !a.RequestedAt.Equal(b.RequestedAt) {
			return a.RequestedAt.Before(b.RequestedAt)
		}
		return a.RequestID < b.RequestID
	})
}
