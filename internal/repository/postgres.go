package repository

import (
	"errors"

	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store groups the GORM repositories behind one connection
type Store struct {
	db        *gorm.DB
	Members   *MemberRepository
	Foods     *FoodRepository
	Templates *TemplateRepository
	Plans     *PlanRepository
}

// NewStore creates every repository on db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Members:   NewMemberRepository(db),
		Foods:     NewFoodRepository(db),
		Templates: NewTemplateRepository(db),
		Plans:     NewPlanRepository(db),
	}
}

func lookupError(err error, code, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError(code, entity, id)
	}
	return apperrors.NewDatabaseError(err)
}

func foodToDomain(f database.Food) domain.FoodNutrientRecord {
	return domain.FoodNutrientRecord{
		ID:      f.ID,
		Name:    f.Name,
		Aliases: []string(f.Aliases),
		Per100g: domain.Nutrients{
			Calories: f.Calories,
			Protein:  f.Protein,
			Carbs:    f.Carbs,
			Fat:      f.Fat,
			Fiber:    f.Fiber,
			Sugar:    f.Sugar,
			Sodium:   f.Sodium,
			VitaminA: f.VitaminA,
			VitaminC: f.VitaminC,
			Calcium:  f.Calcium,
			Iron:     f.Iron,
		},
	}
}

// foodFromDomain builds a row from a catalog record
func foodFromDomain(r domain.FoodNutrientRecord) database.Food {
	n := r.Per100g
	return database.Food{
		Name:     r.Name,
		Aliases:  r.Aliases,
		Calories: n.Calories,
		Protein:  n.Protein,
		Carbs:    n.Carbs,
		Fat:      n.Fat,
		Fiber:    n.Fiber,
		Sugar:    n.Sugar,
		Sodium:   n.Sodium,
		VitaminA: n.VitaminA,
		VitaminC: n.VitaminC,
		Calcium:  n.Calcium,
		Iron:     n.Iron,
	}
}

func profileToDomain(m database.Member) domain.MemberProfile {
	name := m.FirstName
	if name == "" {
		name = m.Username
	}
	return domain.MemberProfile{
		ID:            m.ID,
		TelegramID:    m.TelegramID,
		Name:          name,
		WeightKg:      m.WeightKg,
		HeightCm:      m.HeightCm,
		Birthdate:     m.Birthdate,
		Gender:        domain.Gender(m.Gender),
		ActivityLevel: domain.ActivityLevel(m.ActivityLevel),
	}
}

func goalToDomain(g database.HealthGoal) domain.HealthGoal {
	goal := domain.HealthGoal{
		ID:       g.ID,
		MemberID: g.MemberID,
		Type:     domain.GoalType(g.Type),
		Active:   g.Active,
	}
	if g.CarbRatio != nil && g.ProteinRatio != nil && g.FatRatio != nil {
		goal.CustomRatios = &domain.MacroRatios{Carb: *g.CarbRatio, Protein: *g.ProteinRatio, Fat: *g.FatRatio}
	}
	return goal
}

func templateToDomain(t database.MealTemplate) domain.MealTemplate {
	tpl := domain.MealTemplate{
		ID:   t.ID,
		Name: t.Name,
		Slot: domain.MealSlot(t.Slot),
		Tags: []string(t.Tags),
	}
	for _, g := range t.SuitableGoals {
		tpl.SuitableGoals = append(tpl.SuitableGoals, domain.GoalType(g))
	}
	for _, ing := range t.Ingredients {
		tpl.Ingredients = append(tpl.Ingredients, domain.TemplateIngredient{
			FoodID:      ing.FoodID,
			FoodName:    ing.Food.Name,
			FoodAliases: []string(ing.Food.Aliases),
			Grams:       ing.Grams,
		})
	}
	return tpl
}

func mealToDomain(m database.PlannedMeal) domain.PlannedMeal {
	meal := domain.PlannedMeal{
		ID:           m.ID,
		PlanID:       m.MealPlanID,
		Date:         m.Date,
		Slot:         domain.MealSlot(m.Slot),
		TemplateID:   m.TemplateID,
		TemplateName: m.TemplateName,
		Nutrition:    m.Nutrition.Data(),
		Trace:        m.Trace.Data(),
	}
	for _, ing := range m.Ingredients {
		meal.Ingredients = append(meal.Ingredients, domain.ResolvedIngredient{
			FoodID:    ing.FoodID,
			FoodName:  ing.FoodName,
			Grams:     ing.Grams,
			Nutrients: ing.Nutrients.Data(),
		})
	}
	return meal
}

func ingredientsFromDomain(items []domain.ResolvedIngredient) []database.PlannedMealIngredient {
	out := make([]database.PlannedMealIngredient, 0, len(items))
	for _, ing := range items {
		out = append(out, database.PlannedMealIngredient{
			FoodID:    ing.FoodID,
			FoodName:  ing.FoodName,
			Grams:     ing.Grams,
			Nutrients: datatypes.NewJSONType(ing.Nutrients),
		})
	}
	return out
}
