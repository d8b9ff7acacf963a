package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shiva/propdispatch/internal/model"
	"github.com/shiva/propdispatch/pkg/geo"
)

// SelectorOptions tune provider selection.
type SelectorOptions struct {
	// DistanceAware enables the rating/distance composite score when both the
	// property and the provider have coordinates.
	DistanceAware bool
	// DistanceWeight is the rating points subtracted per mile.
	DistanceWeight float64
}

// ProviderSelector picks the provider for a maintenance request.
//
// Algorithm:
//
//  1. CLASSIFY the description into a category.
//  2. FETCH available providers of that category, rating desc, id asc.
//  3. FALLBACK to available general providers when step 2 is empty.
//  4. SELECT the head of the list, or with DistanceAware the candidate with
//     the highest rating - weight*miles (ties keep list order).
//
// The result is always a member of the eligible list; nil means no provider.
type ProviderSelector struct {
	classifier *Classifier
	providers  ProviderStore
	opts       SelectorOptions
	log        *zap.Logger
}

// NewProviderSelector creates a selector.
func NewProviderSelector(classifier *Classifier, providers ProviderStore, opts SelectorOptions, log *zap.Logger) *ProviderSelector {
	return &ProviderSelector{
		classifier: classifier,
		providers:  providers,
		opts:       opts,
		log:        log.Named("select"),
	}
}

// FindBestProvider returns the provider to assign, or nil when neither the
// category pool nor the general pool has an available provider. Errors are
// storage failures only.
func (s *ProviderSelector) FindBestProvider(ctx context.Context, req *model.MaintenanceRequest) (*model.ServiceProvider, error) {
	category := s.classifier.Categorize(req.Description)

	// ── Step 1: category pool ───────────────────────────
	candidates, err := s.providers.FindAvailableProviders(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	// ── Step 2: general fallback ────────────────────────
	if len(candidates) == 0 && category != model.CategoryGeneral {
		s.log.Debug("no providers in category, falling back to general",
			zap.Int64("request_id", req.ID), zap.String("category", string(category)))
		candidates, err = s.providers.FindAvailableProviders(ctx, model.CategoryGeneral)
		if err != nil {
			return nil, fmt.Errorf("select: %w", err)
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	s.log.Debug("candidate providers",
		zap.Int64("request_id", req.ID), zap.Int("count", len(candidates)))

	// ── Step 3: choose ──────────────────────────────────
	best := 0
	if s.opts.DistanceAware && req.Property != nil && req.Property.Location != nil {
		best = s.bestByScore(candidates, *req.Property.Location)
	}

	chosen := candidates[best]
	return &chosen, nil
}

// bestByScore returns the index of the candidate with the highest
// rating - weight*miles. Candidates without a base location score by rating.
func (s *ProviderSelector) bestByScore(candidates []model.ServiceProvider, site model.Location) int {
	best := 0
	bestScore := s.score(candidates[0], site)
	for i := 1; i < len(candidates); i++ {
		if sc := s.score(candidates[i], site); sc > bestScore {
			best = i
			bestScore = sc
		}
	}
	return best
}

func (s *ProviderSelector) score(p model.ServiceProvider, site model.Location) float64 {
	if p.BaseLocation == nil {
		return p.Rating
	}
	return p.Rating - s.opts.DistanceWeight*geo.HaversineMiles(*p.BaseLocation, site)
}
