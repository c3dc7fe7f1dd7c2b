package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/meal-planner/internal/config"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"github.com/vladimiradmaev/meal-planner/internal/macros"
	"github.com/vladimiradmaev/meal-planner/internal/matcher"
	"github.com/vladimiradmaev/meal-planner/internal/utils"
)

const defaultPlanDays = 7

// MealPlanService generates multi-day plans and replaces single meals
type MealPlanService struct {
	members   domain.MemberProvider
	allergies domain.AllergyRegistry
	matcher   *matcher.Matcher
	plans     domain.PlanStore
	cfg       config.PlannerConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewMealPlanService(
	members domain.MemberProvider,
	allergies domain.AllergyRegistry,
	m *matcher.Matcher,
	plans domain.PlanStore,
	cfg config.PlannerConfig,
	log *slog.Logger,
) *MealPlanService {
	return &MealPlanService{
		members:   members,
		allergies: allergies,
		matcher:   m,
		plans:     plans,
		cfg:       cfg,
		logger:    logger.OrDefault(log),
		now:       time.Now,
	}
}

// WithClock replaces the time source used for ages, default start dates and seasons
func (s *MealPlanService) WithClock(now func() time.Time) *MealPlanService {
	s.now = now
	return s
}

func (s *MealPlanService) resolveDays(days int) (int, error) {
	if days == 0 {
		days = s.cfg.DefaultDays
		if days == 0 {
			days = defaultPlanDays
		}
	}
	maxDays := s.cfg.MaxDays
	if maxDays == 0 {
		maxDays = 31
	}
	if days < 1 || days > maxDays {
		return 0, apperrors.NewValidationError(fmt.Sprintf("days must be between 1 and %d, got %d", maxDays, days))
	}
	return days, nil
}

// Targets computes the member's daily and per-meal targets without generating a plan
func (s *MealPlanService) Targets(ctx context.Context, memberID uint) (*macros.Targets, error) {
	profile, err := s.members.GetProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	goal, err := s.members.GetActiveGoal(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return macros.Plan(*profile, *goal, s.now())
}

// GeneratePlan builds a plan of days x four slots for the member. Unsatisfiable
// slots are skipped. When ctx ends between meals the plan built so far is
// returned with Interrupted set, together with a timeout error.
func (s *MealPlanService) GeneratePlan(ctx context.Context, memberID uint, days int, startDate *time.Time) (*domain.GeneratedMealPlan, error) {
	days, err := s.resolveDays(days)
	if err != nil {
		return nil, err
	}

	profile, err := s.members.GetProfile(ctx, memberID)
	if err != nil {
		return nil, err
	}
	goal, err := s.members.GetActiveGoal(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	targets, err := macros.Plan(*profile, *goal, now)
	if err != nil {
		return nil, err
	}

	allergens, err := s.allergies.ListAllergenNames(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if s.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.GenerationTimeout)
		defer cancel()
	}

	start := now
	if startDate != nil {
		start = *startDate
	}
	dates := utils.Days(start, days)

	plan := &domain.GeneratedMealPlan{
		RunID:        uuid.NewString(),
		MemberID:     memberID,
		StartDate:    dates[0],
		EndDate:      dates[len(dates)-1],
		Goal:         goal.Type,
		Ratios:       targets.Ratios,
		DailyTargets: targets.Daily,
		MealTargets:  targets.PerMeal,
	}
	log := s.logger.With("run_id", plan.RunID, "member_id", memberID)

	used := make(map[uint]struct{})
	for _, date := range dates {
		for _, slot := range domain.MealSlots {
			if err := ctx.Err(); err != nil {
				return s.interrupt(plan, log, err)
			}

			sel, err := s.matcher.Select(ctx, matcher.Request{
				Slot:      slot,
				Goal:      goal.Type,
				Target:    targets.PerMeal[slot],
				Allergens: allergens,
				Date:      date,
				Used:      used,
			})
			if err != nil {
				if apperrors.IsType(err, apperrors.ErrorTypeUnsatisfiable) {
					log.Warn("Slot skipped", "date", date.Format("2006-01-02"), "slot", slot, "reason", err.Error())
					plan.Skipped = append(plan.Skipped, domain.SlotRef{Date: date, Slot: slot})
					continue
				}
				if ctxErr := ctx.Err(); ctxErr != nil {
					return s.interrupt(plan, log, ctxErr)
				}
				return nil, err
			}

			used[sel.Template.ID] = struct{}{}
			plan.Meals = append(plan.Meals, mealFromSelection(date, slot, sel))
		}
	}

	log.Info("Meal plan generated",
		"days", days,
		"meals", len(plan.Meals),
		"skipped", len(plan.Skipped),
		"goal", goal.Type,
		"daily_calories", targets.Daily.Calories)
	return plan, nil
}

func (s *MealPlanService) interrupt(plan *domain.GeneratedMealPlan, log *slog.Logger, cause error) (*domain.GeneratedMealPlan, error) {
	plan.Interrupted = true
	log.Warn("Meal plan generation interrupted", "meals", len(plan.Meals), "error", cause)
	return plan, apperrors.NewTimeoutError(cause, "generate meal plan").WithContext("run_id", plan.RunID)
}

func mealFromSelection(date time.Time, slot domain.MealSlot, sel *matcher.Selection) domain.PlannedMeal {
	return domain.PlannedMeal{
		Date:         date,
		Slot:         slot,
		TemplateID:   sel.Template.ID,
		TemplateName: sel.Template.Name,
		Ingredients:  sel.Ingredients,
		Nutrition:    sel.Nutrition,
		Trace:        sel.Trace,
	}
}

// GenerateAndSave generates a plan and persists it. Interrupted plans are returned but not saved.
func (s *MealPlanService) GenerateAndSave(ctx context.Context, memberID uint, days int, startDate *time.Time) (*domain.GeneratedMealPlan, error) {
	plan, err := s.GeneratePlan(ctx, memberID, days, startDate)
	if err != nil {
		return plan, err
	}
	if err := s.plans.SavePlan(ctx, plan); err != nil {
		return nil, err
	}
	s.logger.Info("Meal plan saved", "plan_id", plan.ID, "run_id", plan.RunID, "member_id", memberID)
	return plan, nil
}

// CurrentPlan returns the member's most recently saved plan
func (s *MealPlanService) CurrentPlan(ctx context.Context, memberID uint) (*domain.GeneratedMealPlan, error) {
	return s.plans.LatestPlan(ctx, memberID)
}

// ReplaceMeal picks a different template for one stored meal, targeting the
// meal's own nutrition so the day's totals stay stable. Anti-repeat is not applied.
func (s *MealPlanService) ReplaceMeal(ctx context.Context, mealID, memberID uint) (*domain.PlannedMeal, error) {
	meal, err := s.plans.GetMeal(ctx, mealID)
	if err != nil {
		return nil, err
	}
	plan, err := s.plans.GetPlan(ctx, meal.PlanID)
	if err != nil {
		return nil, err
	}
	if plan.MemberID != memberID {
		return nil, apperrors.NewAuthorizationError("meal belongs to another member").
			WithContext("meal_id", mealID).
			WithContext("member_id", memberID)
	}

	goalType := plan.Goal
	if goalType == "" {
		goal, err := s.members.GetActiveGoal(ctx, memberID)
		if err != nil {
			return nil, err
		}
		goalType = goal.Type
	}

	allergens, err := s.allergies.ListAllergenNames(ctx, memberID)
	if err != nil {
		return nil, err
	}

	sel, err := s.matcher.Select(ctx, matcher.Request{
		Slot:      meal.Slot,
		Goal:      goalType,
		Target:    meal.Nutrition.Macros(),
		Allergens: allergens,
		Date:      meal.Date,
		Exclude:   meal.TemplateID,
	})
	if err != nil {
		return nil, err
	}

	previous := meal.Nutrition.Calories
	updated := mealFromSelection(meal.Date, meal.Slot, sel)
	updated.ID = meal.ID
	updated.PlanID = meal.PlanID
	if err := s.plans.UpdateMeal(ctx, &updated); err != nil {
		return nil, err
	}

	s.logger.Info("Meal replaced",
		"meal_id", mealID,
		"member_id", memberID,
		"old_template_id", meal.TemplateID,
		"new_template_id", updated.TemplateID,
		"old_calories", previous,
		"new_calories", updated.Nutrition.Calories,
		"penalty", updated.Trace.PenaltyApplied)
	return &updated, nil
}
