package services

import (
	"context"

	"github.com/google/uuid"

	"memoria/internal/models/db_models"
	"memoria/internal/models/response_models"
	"memoria/internal/repositories"
	"memoria/pkg/utils"
)

type PlanServiceInterface interface {
	ListActivePlans(ctx context.Context) ([]response_models.PlanResponse, error)
	GetPlan(ctx context.Context, planID string) (*db_models.Plan, error)
	FreePlan(ctx context.Context) (*db_models.Plan, error)
}

func NewPlanService(planRepo repositories.IPlanRepository) PlanServiceInterface {
	return &PlanService{
		planRepo: planRepo,
	}
}

type PlanService struct {
	planRepo repositories.IPlanRepository
}

// Entitlements lists what a plan unlocks. A nil plan unlocks nothing beyond
// the free gallery allowance.
func Entitlements(plan *db_models.Plan) response_models.Entitlements {
	return response_models.Entitlements{
		Gallery:      plan != nil && plan.AllowGallery,
		Music:        plan.CanUseMusic(),
		CustomBanner: plan.CanUseCustomBanner(),
		GalleryLimit: plan.GalleryLimit(),
	}
}

func ToPlanResponse(plan *db_models.Plan) response_models.PlanResponse {
	return response_models.PlanResponse{
		ID:           plan.ID.String(),
		Name:         plan.Name,
		Description:  plan.Description,
		Price:        plan.PriceMinor,
		Currency:     plan.Currency,
		BillingCycle: string(plan.BillingCycle),
		IsFree:       plan.IsFree(),
		Entitlements: Entitlements(plan),
	}
}

func (p *PlanService) ListActivePlans(ctx context.Context) ([]response_models.PlanResponse, error) {
	plans, err := p.planRepo.GetActivePlans(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	result := make([]response_models.PlanResponse, 0, len(plans))
	for i := range plans {
		result = append(result, ToPlanResponse(&plans[i]))
	}
	return result, nil
}

func (p *PlanService) GetPlan(ctx context.Context, planID string) (*db_models.Plan, error) {
	if _, err := uuid.Parse(planID); err != nil {
		return nil, utils.ErrPlanNotFound
	}

	plan, err := p.planRepo.GetPlanInfoById(ctx, planID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	if plan == nil {
		return nil, utils.ErrPlanNotFound
	}

	return plan, nil
}

func (p *PlanService) FreePlan(ctx context.Context) (*db_models.Plan, error) {
	plan, err := p.planRepo.GetFreePlan(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if plan == nil {
		return nil, utils.ErrPlanNotFound
	}
	return plan, nil
}
