package repository

import (
	"context"

	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanRepository persists generated plans
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// SavePlan writes the plan with all meals and ingredients in one transaction
// and fills in the generated ids.
func (r *PlanRepository) SavePlan(ctx context.Context, plan *domain.GeneratedMealPlan) error {
	row := database.MealPlan{
		RunID:        plan.RunID,
		MemberID:     plan.MemberID,
		StartDate:    plan.StartDate,
		EndDate:      plan.EndDate,
		Goal:         string(plan.Goal),
		Ratios:       datatypes.NewJSONType(plan.Ratios),
		DailyTargets: datatypes.NewJSONType(plan.DailyTargets),
		MealTargets:  datatypes.NewJSONType(plan.MealTargets),
		Skipped:      plan.Skipped,
	}
	for _, m := range plan.Meals {
		row.Meals = append(row.Meals, database.PlannedMeal{
			Date:         m.Date,
			Slot:         string(m.Slot),
			TemplateID:   m.TemplateID,
			TemplateName: m.TemplateName,
			Calories:     m.Nutrition.Calories,
			Nutrition:    datatypes.NewJSONType(m.Nutrition),
			Trace:        datatypes.NewJSONType(m.Trace),
			Ingredients:  ingredientsFromDomain(m.Ingredients),
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return apperrors.NewDatabaseError(err).WithContext("run_id", plan.RunID)
	}

	plan.ID = row.ID
	for i := range plan.Meals {
		plan.Meals[i].ID = row.Meals[i].ID
		plan.Meals[i].PlanID = row.ID
	}
	return nil
}

// GetPlan loads a plan with its meals ordered by date and slot position
func (r *PlanRepository) GetPlan(ctx context.Context, planID uint) (*domain.GeneratedMealPlan, error) {
	var row database.MealPlan
	err := r.db.WithContext(ctx).
		Preload("Meals", func(db *gorm.DB) *gorm.DB { return db.Order("date, id") }).
		Preload("Meals.Ingredients").
		First(&row, planID).Error
	if err != nil {
		return nil, lookupError(err, "PLAN_NOT_FOUND", "plan", planID)
	}
	return planToDomain(row), nil
}

// LatestPlan returns the most recent plan of a member
func (r *PlanRepository) LatestPlan(ctx context.Context, memberID uint) (*domain.GeneratedMealPlan, error) {
	var row database.MealPlan
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("id DESC").
		First(&row).Error
	if err != nil {
		return nil, lookupError(err, "PLAN_NOT_FOUND", "plan of member", memberID)
	}
	return r.GetPlan(ctx, row.ID)
}

func (r *PlanRepository) GetMeal(ctx context.Context, mealID uint) (*domain.PlannedMeal, error) {
	var row database.PlannedMeal
	if err := r.db.WithContext(ctx).Preload("Ingredients").First(&row, mealID).Error; err != nil {
		return nil, lookupError(err, "MEAL_NOT_FOUND", "meal", mealID)
	}
	meal := mealToDomain(row)
	return &meal, nil
}

// UpdateMeal swaps the recipe of a stored meal and replaces its ingredient rows
func (r *PlanRepository) UpdateMeal(ctx context.Context, meal *domain.PlannedMeal) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&database.PlannedMeal{}).Where("id = ?", meal.ID).Updates(map[string]interface{}{
			"template_id":   meal.TemplateID,
			"template_name": meal.TemplateName,
			"calories":      meal.Nutrition.Calories,
			"nutrition":     datatypes.NewJSONType(meal.Nutrition),
			"trace":         datatypes.NewJSONType(meal.Trace),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("planned_meal_id = ?", meal.ID).Delete(&database.PlannedMealIngredient{}).Error; err != nil {
			return err
		}
		rows := ingredientsFromDomain(meal.Ingredients)
		for i := range rows {
			rows[i].PlannedMealID = meal.ID
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return lookupError(err, "MEAL_NOT_FOUND", "meal", meal.ID)
	}
	return nil
}

func planToDomain(row database.MealPlan) *domain.GeneratedMealPlan {
	plan := &domain.GeneratedMealPlan{
		ID:           row.ID,
		RunID:        row.RunID,
		MemberID:     row.MemberID,
		StartDate:    row.StartDate,
		EndDate:      row.EndDate,
		Goal:         domain.GoalType(row.Goal),
		Ratios:       row.Ratios.Data(),
		DailyTargets: row.DailyTargets.Data(),
		MealTargets:  row.MealTargets.Data(),
		Skipped:      []domain.SlotRef(row.Skipped),
	}
	for _, m := range row.Meals {
		plan.Meals = append(plan.Meals, mealToDomain(m))
	}
	return plan
}
