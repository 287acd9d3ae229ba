package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/repo"
)

// PlanService fronts the read-only plans table with an expirable LRU so the
// chat hot path does not hit the database for reference data.
type PlanService struct {
	plans *repo.PlanRepo
	cache *expirable.LRU[string, *model.Plan]
}

func NewPlanService(plans *repo.PlanRepo) *PlanService {
	return &PlanService{
		plans: plans,
		cache: expirable.NewLRU[string, *model.Plan](64, nil, 10*time.Minute),
	}
}

func (s *PlanService) Get(ctx context.Context, planID string) (*model.Plan, error) {
	if cached, ok := s.cache.Get(planID); ok {
		return cached, nil
	}
	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(planID, plan)
	return plan, nil
}

func (s *PlanService) List(ctx context.Context) ([]*model.Plan, error) {
	plans, err := s.plans.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, plan := range plans {
		s.cache.Add(plan.ID, plan)
	}
	return plans, nil
}
