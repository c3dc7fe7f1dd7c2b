package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	// every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db, logger.Discard()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return NewStore(db)
}

func ptr(v float64) *float64 { return &v }

func foodID(t *testing.T, store *Store, name string) uint {
	t.Helper()
	var row database.Food
	if err := store.db.Where("name = ?", name).First(&row).Error; err != nil {
		t.Fatalf("Failed to find food %q: %v", name, err)
	}
	return row.ID
}

func TestFoodRepositoryResolveMany(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.ImportCatalog(ctx, []domain.FoodNutrientRecord{
		{
			Name:    "Oats",
			Aliases: []string{"rolled oats"},
			Per100g: domain.Nutrients{Calories: 389, Protein: 16.9, Carbs: 66.3, Fat: 6.9, Fiber: ptr(10.6)},
		},
		{Name: "Milk", Per100g: domain.Nutrients{Calories: 61}},
	}, nil)
	if err != nil {
		t.Fatalf("Failed to import foods: %v", err)
	}
	oats, milk := foodID(t, store, "Oats"), foodID(t, store, "Milk")

	got, err := store.Foods.ResolveMany(ctx, []uint{oats, milk, 999})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	rec := got[oats]
	if rec.Name != "Oats" || len(rec.Aliases) != 1 || rec.Aliases[0] != "rolled oats" {
		t.Errorf("Unexpected record %+v", rec)
	}
	if rec.Per100g.Fiber == nil || *rec.Per100g.Fiber != 10.6 {
		t.Errorf("Expected fiber 10.6, got %v", rec.Per100g.Fiber)
	}
	if got[milk].Per100g.Fiber != nil {
		t.Errorf("Expected undefined fiber to stay nil")
	}
}

func TestTemplateRepositoryListTemplates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.ImportCatalog(ctx, []domain.FoodNutrientRecord{
		{Name: "Shrimp", Aliases: []string{"prawn"}},
		{Name: "Rice"},
	}, []domain.MealTemplate{
		{
			Name:          "Shrimp rice",
			Slot:          domain.SlotLunch,
			SuitableGoals: []domain.GoalType{domain.GoalMaintain, domain.GoalGainMuscle},
			Tags:          []string{"seafood"},
			Ingredients: []domain.TemplateIngredient{
				{FoodName: "shrimp", Grams: 120},
				{FoodName: "Rice", Grams: 150},
			},
		},
		{Name: "Rice porridge", Slot: domain.SlotBreakfast},
	})
	if err != nil {
		t.Fatalf("Failed to import templates: %v", err)
	}

	lunch, err := store.Templates.ListTemplates(ctx, domain.SlotLunch)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(lunch) != 1 {
		t.Fatalf("Expected 1 lunch template, got %d", len(lunch))
	}
	tpl := lunch[0]
	if !tpl.SuitableFor(domain.GoalGainMuscle) || tpl.SuitableFor(domain.GoalLoseWeight) {
		t.Errorf("Unexpected suitable goals %v", tpl.SuitableGoals)
	}
	if len(tpl.Ingredients) != 2 || tpl.Ingredients[0].FoodName != "Shrimp" || tpl.Ingredients[0].FoodAliases[0] != "prawn" {
		t.Errorf("Expected preloaded food references in order, got %+v", tpl.Ingredients)
	}
	if tpl.Ingredients[1].Grams != 150 {
		t.Errorf("Expected 150g rice, got %v", tpl.Ingredients[1].Grams)
	}
}

func TestMemberRepository(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	member, err := store.Members.GetOrCreateMember(ctx, 42, "anna", "Anna", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	again, err := store.Members.GetOrCreateMember(ctx, 42, "anna", "Anna", "")
	if err != nil || again.ID != member.ID {
		t.Errorf("Expected the same member on second call, got %v %v", again, err)
	}

	birth := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	err = store.Members.UpdateProfile(ctx, domain.MemberProfile{
		ID: member.ID, WeightKg: 60, HeightCm: 165, Birthdate: &birth,
		Gender: domain.GenderFemale, ActivityLevel: domain.ActivityLight,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	profile, err := store.Members.GetProfile(ctx, member.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if profile.WeightKg != 60 || profile.Gender != domain.GenderFemale || profile.Birthdate == nil || profile.Name != "Anna" {
		t.Errorf("Unexpected profile %+v", profile)
	}

	if _, err := store.Members.GetActiveGoal(ctx, member.ID); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found before a goal is set, got %v", err)
	}
	if _, err := store.Members.SetActiveGoal(ctx, member.ID, domain.GoalLoseWeight, nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	custom := &domain.MacroRatios{Carb: 0.3, Protein: 0.4, Fat: 0.3}
	if _, err := store.Members.SetActiveGoal(ctx, member.ID, domain.GoalGainMuscle, custom); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	goal, err := store.Members.GetActiveGoal(ctx, member.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if goal.Type != domain.GoalGainMuscle || goal.CustomRatios == nil || goal.CustomRatios.Protein != 0.4 {
		t.Errorf("Expected latest goal with custom ratios, got %+v", goal)
	}

	var active int64
	store.db.Model(&database.HealthGoal{}).Where("member_id = ? AND active = ?", member.ID, true).Count(&active)
	if active != 1 {
		t.Errorf("Expected exactly one active goal, got %d", active)
	}

	if err := store.Members.AddAllergy(ctx, member.ID, " Peanut "); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := store.Members.AddAllergy(ctx, member.ID, "  "); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for empty allergen, got %v", err)
	}
	names, err := store.Members.ListAllergenNames(ctx, member.ID)
	if err != nil || len(names) != 1 || names[0] != "Peanut" {
		t.Errorf("Expected [Peanut], got %v %v", names, err)
	}

	if _, err := store.Members.GetProfile(ctx, 999); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestPlanRepository(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	plan := &domain.GeneratedMealPlan{
		RunID:        "run-1",
		MemberID:     7,
		StartDate:    day,
		EndDate:      day,
		Goal:         domain.GoalMaintain,
		Ratios:       domain.MacroRatios{Carb: 0.5, Protein: 0.2, Fat: 0.3},
		DailyTargets: domain.MacroTargets{Calories: 2000, Protein: 100, Carbs: 250, Fat: 67},
		MealTargets:  domain.SlotTargets{domain.SlotLunch: {Calories: 700}},
		Skipped:      []domain.SlotRef{{Date: day, Slot: domain.SlotSnack}},
		Meals: []domain.PlannedMeal{
			{
				Date: day, Slot: domain.SlotBreakfast, TemplateID: 1, TemplateName: "Porridge",
				Nutrition:   domain.Nutrients{Calories: 600, Protein: 30},
				Ingredients: []domain.ResolvedIngredient{{FoodID: 1, FoodName: "Oats", Grams: 100}},
				Trace:       domain.SelectionTrace{TemplateID: 1, Candidates: 3},
			},
			{
				Date: day, Slot: domain.SlotLunch, TemplateID: 2, TemplateName: "Bowl",
				Nutrition: domain.Nutrients{Calories: 700, Protein: 35},
			},
		},
	}

	if err := store.Plans.SavePlan(ctx, plan); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if plan.ID == 0 || plan.Meals[0].ID == 0 || plan.Meals[1].PlanID != plan.ID {
		t.Fatalf("Expected ids to be filled in, got %+v", plan)
	}

	loaded, err := store.Plans.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(loaded.Meals) != 2 || len(loaded.Skipped) != 1 || loaded.MealTargets[domain.SlotLunch].Calories != 700 {
		t.Errorf("Unexpected loaded plan %+v", loaded)
	}
	if loaded.Meals[0].Trace.Candidates != 3 || len(loaded.Meals[0].Ingredients) != 1 {
		t.Errorf("Expected trace and ingredients to round-trip, got %+v", loaded.Meals[0])
	}

	latest, err := store.Plans.LatestPlan(ctx, 7)
	if err != nil || latest.ID != plan.ID {
		t.Errorf("Expected latest plan %d, got %v %v", plan.ID, latest, err)
	}

	meal, err := store.Plans.GetMeal(ctx, plan.Meals[0].ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	meal.TemplateID = 9
	meal.TemplateName = "Eggs"
	meal.Nutrition = domain.Nutrients{Calories: 590}
	meal.Ingredients = []domain.ResolvedIngredient{{FoodID: 3, FoodName: "Egg", Grams: 150}, {FoodID: 4, FoodName: "Toast", Grams: 60}}
	if err := store.Plans.UpdateMeal(ctx, meal); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	updated, err := store.Plans.GetMeal(ctx, meal.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.TemplateID != 9 || updated.Nutrition.Calories != 590 || len(updated.Ingredients) != 2 {
		t.Errorf("Expected replaced meal, got %+v", updated)
	}

	if err := store.Plans.UpdateMeal(ctx, &domain.PlannedMeal{ID: 999}); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found for unknown meal, got %v", err)
	}
	if _, err := store.Plans.GetMeal(ctx, 999); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestImportCatalogTwiceUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	foods := []domain.FoodNutrientRecord{{Name: "Oats", Per100g: domain.Nutrients{Calories: 389}}}
	templates := []domain.MealTemplate{{
		Name:        "Porridge",
		Slot:        domain.SlotBreakfast,
		Ingredients: []domain.TemplateIngredient{{FoodName: "Oats", Grams: 60}},
	}}

	first, err := store.ImportCatalog(ctx, foods, templates)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if first.FoodsCreated != 1 || first.TemplatesCreated != 1 || len(first.UpdatedFoodIDs) != 0 {
		t.Errorf("Unexpected first import %+v", first)
	}

	foods[0].Per100g.Calories = 370
	foods[0].Name = "oats"
	templates[0].Ingredients[0].Grams = 80
	second, err := store.ImportCatalog(ctx, foods, templates)
	if err != nil {
		t.Fatalf("Expected second import to succeed, got %v", err)
	}
	if second.FoodsUpdated != 1 || second.TemplatesUpdated != 1 || second.FoodsCreated != 0 {
		t.Errorf("Unexpected second import %+v", second)
	}
	if len(second.UpdatedFoodIDs) != 1 || second.UpdatedFoodIDs[0] != foodID(t, store, "oats") {
		t.Errorf("Expected updated oats id, got %v", second.UpdatedFoodIDs)
	}

	var count int64
	store.db.Model(&database.Food{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 food row, got %d", count)
	}

	pool, err := store.Templates.ListTemplates(ctx, domain.SlotBreakfast)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(pool) != 1 {
		t.Fatalf("Expected 1 breakfast template, got %d", len(pool))
	}
	if len(pool[0].Ingredients) != 1 || pool[0].Ingredients[0].Grams != 80 {
		t.Errorf("Expected ingredients replaced with 80g oats, got %+v", pool[0].Ingredients)
	}

	got, _ := store.Foods.ResolveMany(ctx, []uint{pool[0].Ingredients[0].FoodID})
	if got[pool[0].Ingredients[0].FoodID].Per100g.Calories != 370 {
		t.Errorf("Expected updated calories 370, got %+v", got)
	}
}

func TestImportCatalogRollsBackOnBadTemplate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	foods := []domain.FoodNutrientRecord{{Name: "Rice"}, {Name: "Beans"}}
	_, err := store.ImportCatalog(ctx, foods, []domain.MealTemplate{
		{Name: "Rice bowl", Slot: domain.SlotLunch, Ingredients: []domain.TemplateIngredient{{FoodName: "Rice", Grams: 150}}},
		{Name: "Chili", Slot: domain.SlotDinner, Ingredients: []domain.TemplateIngredient{{FoodName: "Beef", Grams: 100}}},
	})
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}

	var foodRows, templateRows int64
	store.db.Model(&database.Food{}).Count(&foodRows)
	store.db.Model(&database.MealTemplate{}).Count(&templateRows)
	if foodRows != 0 || templateRows != 0 {
		t.Fatalf("Expected nothing written, got %d foods and %d templates", foodRows, templateRows)
	}

	result, err := store.ImportCatalog(ctx, foods, []domain.MealTemplate{
		{Name: "Rice bowl", Slot: domain.SlotLunch, Ingredients: []domain.TemplateIngredient{{FoodName: "Rice", Grams: 150}}},
	})
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if result.FoodsCreated != 2 || result.TemplatesCreated != 1 {
		t.Errorf("Unexpected retry result %+v", result)
	}
}
