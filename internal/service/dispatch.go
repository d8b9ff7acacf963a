package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/shiva/propdispatch/internal/model"
	"github.com/shiva/propdispatch/internal/repository"
)

// DispatchService binds pending maintenance requests to providers.
//
// Concurrency model:
//   - The pending → assigned transition and the provider counter increment
//     are committed together by the Assigner under a row lock.
//   - A request that is no longer pending at commit time yields
//     ErrAssignmentConflict, so concurrent calls for one request produce
//     exactly one success.
//   - Each assignment runs under repository.DefaultAssignTimeout.
type DispatchService struct {
	requests   RequestStore
	assigner   Assigner
	selector   *ProviderSelector
	classifier *Classifier
	stats      StatsStore
	now        func() time.Time
	log        *zap.Logger
}

// NewDispatchService creates a dispatch service. now may be nil, in which
// case time.Now is used.
func NewDispatchService(
	requests RequestStore,
	assigner Assigner,
	selector *ProviderSelector,
	classifier *Classifier,
	stats StatsStore,
	now func() time.Time,
	log *zap.Logger,
) *DispatchService {
	if now == nil {
		now = time.Now
	}
	return &DispatchService{
		requests:   requests,
		assigner:   assigner,
		selector:   selector,
		classifier: classifier,
		stats:      stats,
		now:        now,
		log:        log.Named("dispatch"),
	}
}

// AutoAssign triages a pending request and assigns the best provider.
//
// Flow:
//  1. Load the request; it must exist and be pending.
//  2. Categorize the description. Re-assess the priority when it is empty,
//     or medium and not chosen by the submitter.
//  3. Select a provider. If none, persist a changed priority and return
//     ErrNoEligibleProvider with the category in the outcome.
//  4. Commit the assignment and counter increment atomically.
//
// Business failures return a non-nil outcome with Success=false together with
// one of the service sentinel errors. Other errors are storage faults.
func (s *DispatchService) AutoAssign(ctx context.Context, requestID int64) (*model.AssignmentOutcome, error) {
	// ── Step 1: Fetch the request ───────────────────────
	req, err := s.requests.GetMaintenanceRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.AssignmentOutcome{Error: ErrRequestNotFound.Error()}, ErrRequestNotFound
		}
		return nil, classifyError(err, ErrRequestNotFound)
	}

	if req.Status != model.RequestPending {
		s.log.Info("request not pending, refusing to re-dispatch",
			zap.Int64("request_id", req.ID), zap.String("status", string(req.Status)))
		return &model.AssignmentOutcome{
			RequestID: req.ID,
			Error:     ErrAssignmentConflict.Error(),
		}, ErrAssignmentConflict
	}

	// ── Step 2: Triage ──────────────────────────────────
	category := s.classifier.Categorize(req.Description)
	priority := req.Priority
	autoAssigned := false
	if needsPriorityAssessment(req) {
		priority = s.classifier.AssessPriority(req.Description)
		autoAssigned = true
	}

	s.log.Debug("triaged request",
		zap.Int64("request_id", req.ID),
		zap.String("category", string(category)),
		zap.String("priority", string(priority)),
		zap.Bool("priority_auto_assigned", autoAssigned))

	// ── Step 3: Select ──────────────────────────────────
	provider, err := s.selector.FindBestProvider(ctx, req)
	if err != nil {
		return nil, classifyError(err, ErrProviderNotFound)
	}

	if provider == nil {
		if priority != req.Priority {
			if err := s.requests.UpdatePriority(ctx, req.ID, priority); err != nil {
				err = classifyError(err, ErrRequestNotFound)
				return s.failure(req.ID, category, priority, autoAssigned, err), err
			}
		}
		s.log.Warn("no eligible provider",
			zap.Int64("request_id", req.ID), zap.String("category", string(category)))
		return s.failure(req.ID, category, priority, autoAssigned, ErrNoEligibleProvider), ErrNoEligibleProvider
	}

	// ── Step 4: Commit ──────────────────────────────────
	txCtx, cancel := context.WithTimeout(ctx, repository.DefaultAssignTimeout)
	defer cancel()

	updated, err := s.assigner.AssignProvider(txCtx, model.Assignment{
		RequestID:  req.ID,
		ProviderID: provider.ID,
		Priority:   priority,
		AssignedAt: s.now(),
	})
	if err != nil {
		err = classifyError(err, ErrRequestNotFound)
		if errors.Is(err, ErrAssignmentConflict) {
			s.log.Info("assignment lost race", zap.Int64("request_id", req.ID))
			return s.failure(req.ID, category, priority, autoAssigned, err), err
		}
		return nil, err
	}

	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}

	s.log.Info("request assigned",
		zap.Int64("request_id", req.ID),
		zap.Int64("provider_id", updated.ID),
		zap.String("category", string(category)),
		zap.String("priority", string(priority)),
		zap.Int("provider_total_jobs", updated.TotalJobs))

	return &model.AssignmentOutcome{
		Success:              true,
		RequestID:            req.ID,
		Provider:             summarize(updated),
		Category:             category,
		Priority:             priority,
		PriorityAutoAssigned: autoAssigned,
	}, nil
}

// needsPriorityAssessment reports whether the stored priority is a default
// rather than a submitter decision.
func needsPriorityAssessment(req *model.MaintenanceRequest) bool {
	if req.Priority == "" {
		return true
	}
	return req.Priority == model.PriorityMedium && !req.PriorityExplicit
}

func (s *DispatchService) failure(
	requestID int64,
	category model.Category,
	priority model.Priority,
	autoAssigned bool,
	err error,
) *model.AssignmentOutcome {
	return &model.AssignmentOutcome{
		RequestID:            requestID,
		Category:             category,
		Priority:             priority,
		PriorityAutoAssigned: autoAssigned,
		Error:                err.Error(),
	}
}

func summarize(p *model.ServiceProvider) *model.ProviderSummary {
	name := p.CompanyName
	if name == "" {
		name = p.Name
	}
	return &model.ProviderSummary{
		ID:     p.ID,
		Name:   name,
		Type:   p.ProviderType,
		Rating: p.Rating,
	}
}
