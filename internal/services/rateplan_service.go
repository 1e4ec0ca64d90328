package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jambotech/jambosms-backend/internal/models"
	"github.com/jambotech/jambosms-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compile-time check to ensure RatePlanServiceImpl implements RatePlanService
var _ RatePlanService = (*RatePlanServiceImpl)(nil)

// RatePlanServiceImpl resolves rate tables and rates amounts against them.
type RatePlanServiceImpl struct {
	planRepo repositories.RechargePlanRepository
}

// NewRatePlanService creates a new RatePlanServiceImpl
func NewRatePlanService(planRepo repositories.RechargePlanRepository) *RatePlanServiceImpl {
	return &RatePlanServiceImpl{planRepo: planRepo}
}

// UnitsFor converts a paid amount into message units. The tier whose price
// limit first covers the amount supplies the rate; amounts above the top tier
// fall back to the top tier's rate instead of failing. Units are
// floor(amount/rate) in exact decimal arithmetic.
func (s *RatePlanServiceImpl) UnitsFor(ctx context.Context, company *models.Company, amount decimal.Decimal) (int64, error) {
	plans, err := s.resolvePlans(ctx, company)
	if err != nil {
		return 0, err
	}
	if len(plans) == 0 {
		return 0, ErrNoRatePlans
	}

	rate, err := rateFor(plans, amount)
	if err != nil {
		return 0, err
	}
	if rate.IsZero() {
		return 0, fmt.Errorf("recharge plan has a zero rate")
	}
	return amount.Div(rate).Floor().IntPart(), nil
}

// resolvePlans picks the billing scope: a reseller-sponsored company is rated
// on its parent's tiers, everyone else on the global table.
func (s *RatePlanServiceImpl) resolvePlans(ctx context.Context, company *models.Company) ([]*models.RechargePlan, error) {
	if company.ParentID != nil {
		return s.planRepo.FindByCompany(ctx, *company.ParentID)
	}
	return s.planRepo.FindGlobal(ctx)
}

// rateFor walks the ascending tier list and returns the applicable rate.
func rateFor(plans []*models.RechargePlan, amount decimal.Decimal) (decimal.Decimal, error) {
	for _, plan := range plans {
		if amount.LessThanOrEqual(decimal.NewFromInt(plan.PriceLimit)) {
			return plan.RateDecimal()
		}
	}
	// Amount exceeds every tier: degrade to the top tier's rate.
	return plans[len(plans)-1].RateDecimal()
}

// CreateGlobalPlan adds a tier to the global rate table
func (s *RatePlanServiceImpl) CreateGlobalPlan(ctx context.Context, plan *models.RechargePlan) error {
	if err := validatePlan(plan); err != nil {
		return err
	}
	plan.CompanyID = nil
	return s.planRepo.Create(ctx, plan)
}

// CreateResellerPlan adds a tier to a reseller's own rate table
func (s *RatePlanServiceImpl) CreateResellerPlan(ctx context.Context, companyID primitive.ObjectID, plan *models.RechargePlan) error {
	if err := validatePlan(plan); err != nil {
		return err
	}
	plan.CompanyID = &companyID
	return s.planRepo.Create(ctx, plan)
}

// ListGlobalPlans returns the global rate table
func (s *RatePlanServiceImpl) ListGlobalPlans(ctx context.Context) ([]*models.RechargePlan, error) {
	return s.planRepo.FindGlobal(ctx)
}

// ListResellerPlans returns a reseller's rate table
func (s *RatePlanServiceImpl) ListResellerPlans(ctx context.Context, companyID primitive.ObjectID) ([]*models.RechargePlan, error) {
	return s.planRepo.FindByCompany(ctx, companyID)
}

func validatePlan(plan *models.RechargePlan) error {
	if plan.PriceLimit <= 0 {
		return errors.New("price limit must be positive")
	}
	rate, err := plan.RateDecimal()
	if err != nil {
		return fmt.Errorf("invalid rate: %w", err)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return errors.New("rate must be positive")
	}
	return nil
}
