package interfaces

import (
	"context"
	"time"

	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	"github.com/vladimiradmaev/meal-planner/internal/macros"
)

// MemberServiceInterface defines the contract for member operations
type MemberServiceInterface interface {
	RegisterMember(ctx context.Context, telegramID int64, username, firstName, lastName string) (*database.Member, error)
	UpdateProfile(ctx context.Context, profile domain.MemberProfile) error
	SetGoal(ctx context.Context, memberID uint, goalType domain.GoalType, ratios *domain.MacroRatios) (*domain.HealthGoal, error)
	AddAllergy(ctx context.Context, memberID uint, allergen string) error
	ListAllergies(ctx context.Context, memberID uint) ([]string, error)
}

// MealPlanServiceInterface defines the contract for plan generation
type MealPlanServiceInterface interface {
	GenerateAndSave(ctx context.Context, memberID uint, days int, startDate *time.Time) (*domain.GeneratedMealPlan, error)
	ReplaceMeal(ctx context.Context, mealID, memberID uint) (*domain.PlannedMeal, error)
	CurrentPlan(ctx context.Context, memberID uint) (*domain.GeneratedMealPlan, error)
	Targets(ctx context.Context, memberID uint) (*macros.Targets, error)
}

// PlanSummaryServiceInterface defines the contract for plan summaries
type PlanSummaryServiceInterface interface {
	Summarize(ctx context.Context, plan *domain.GeneratedMealPlan) (string, error)
}
