package domain

import (
	"context"
)

// FoodCatalog resolves nutrient records in batches
type FoodCatalog interface {
	ResolveMany(ctx context.Context, foodIDs []uint) (map[uint]FoodNutrientRecord, error)
}

// TemplateRepository lists templates for one meal slot with resolved food references
type TemplateRepository interface {
	ListTemplates(ctx context.Context, slot MealSlot) ([]MealTemplate, error)
}

// AllergyRegistry lists the allergen names a member declared
type AllergyRegistry interface {
	ListAllergenNames(ctx context.Context, memberID uint) ([]string, error)
}

// MemberProvider loads physiological profiles and active goals
type MemberProvider interface {
	GetProfile(ctx context.Context, memberID uint) (*MemberProfile, error)
	GetActiveGoal(ctx context.Context, memberID uint) (*HealthGoal, error)
}

// PlanStore persists finished plans and single-meal replacements
type PlanStore interface {
	SavePlan(ctx context.Context, plan *GeneratedMealPlan) error
	GetPlan(ctx context.Context, planID uint) (*GeneratedMealPlan, error)
	LatestPlan(ctx context.Context, memberID uint) (*GeneratedMealPlan, error)
	GetMeal(ctx context.Context, mealID uint) (*PlannedMeal, error)
	UpdateMeal(ctx context.Context, meal *PlannedMeal) error
}
