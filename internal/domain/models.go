package domain

import (
	"time"
)

// Gender as used by the Mifflin-St Jeor equation
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ActivityLevel selects the TDEE multiplier
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// GoalType is the objective a plan is generated for
type GoalType string

const (
	GoalLoseWeight    GoalType = "lose_weight"
	GoalGainMuscle    GoalType = "gain_muscle"
	GoalMaintain      GoalType = "maintain"
	GoalImproveHealth GoalType = "improve_health"
)

// Valid reports whether g is one of the known goal types
func (g GoalType) Valid() bool {
	switch g {
	case GoalLoseWeight, GoalGainMuscle, GoalMaintain, GoalImproveHealth:
		return true
	}
	return false
}

// MealSlot is one of the four meals of a day
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnack     MealSlot = "snack"
)

// MealSlots lists the slots in generation order
var MealSlots = []MealSlot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack}

// MemberProfile is the person being planned for
type MemberProfile struct {
	ID            uint
	TelegramID    int64
	Name          string
	WeightKg      float64
	HeightCm      float64
	Birthdate     *time.Time
	Gender        Gender
	ActivityLevel ActivityLevel
}

// MacroRatios are energy shares of carbs, protein and fat
type MacroRatios struct {
	Carb    float64 `json:"carb"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// Sum returns Carb + Protein + Fat
func (r MacroRatios) Sum() float64 {
	return r.Carb + r.Protein + r.Fat
}

// HealthGoal is the member's active objective
type HealthGoal struct {
	ID           uint
	MemberID     uint
	Type         GoalType
	CustomRatios *MacroRatios
	Active       bool
}

// Nutrients holds the four core macros plus optional micro-nutrients.
// A nil micro means "not defined", which is different from zero.
type Nutrients struct {
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty"`
	VitaminA *float64 `json:"vitamin_a,omitempty"`
	VitaminC *float64 `json:"vitamin_c,omitempty"`
	Calcium  *float64 `json:"calcium,omitempty"`
	Iron     *float64 `json:"iron,omitempty"`
}

// Macros drops the micro-nutrients
func (n Nutrients) Macros() MacroTargets {
	return MacroTargets{Calories: n.Calories, Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat}
}

// FoodNutrientRecord holds nutrient facts per 100g of a food
type FoodNutrientRecord struct {
	ID      uint
	Name    string
	Aliases []string
	Per100g Nutrients
}

// TemplateIngredient is a food reference with a gram amount. Name and aliases
// are pre-resolved by the template repository for allergen and season checks.
type TemplateIngredient struct {
	FoodID      uint
	FoodName    string
	FoodAliases []string
	Grams       float64
}

// MealTemplate is a reusable recipe definition for one meal slot
type MealTemplate struct {
	ID            uint
	Name          string
	Slot          MealSlot
	Ingredients   []TemplateIngredient
	SuitableGoals []GoalType
	Tags          []string
}

// SuitableFor reports whether the template lists the goal
func (t MealTemplate) SuitableFor(goal GoalType) bool {
	for _, g := range t.SuitableGoals {
		if g == goal {
			return true
		}
	}
	return false
}

// MacroTargets are calorie and macro numbers for a day or a single meal
type MacroTargets struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// SlotTargets maps each meal slot to its targets
type SlotTargets map[MealSlot]MacroTargets

// ResolvedIngredient is an ingredient with its scaled nutrition
type ResolvedIngredient struct {
	FoodID    uint      `json:"food_id"`
	FoodName  string    `json:"food_name"`
	Grams     float64   `json:"grams"`
	Nutrients Nutrients `json:"nutrients"`
}

// Deviations are relative deviations of a candidate from its target per axis
type Deviations struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// SelectionTrace records how a template won its slot
type SelectionTrace struct {
	TemplateID     uint       `json:"template_id"`
	Candidates     int        `json:"candidates"`
	Deviations     Deviations `json:"deviations"`
	DeviationSum   float64    `json:"deviation_sum"`
	PenaltyApplied bool       `json:"penalty_applied"`
	SeasonalBonus  float64    `json:"seasonal_bonus"`
	Score          float64    `json:"score"`
	RepeatFallback bool       `json:"repeat_fallback"`
	Season         string     `json:"season"`
}

// PlannedMeal is one meal occurrence in a plan
type PlannedMeal struct {
	ID           uint
	PlanID       uint
	Date         time.Time
	Slot         MealSlot
	TemplateID   uint
	TemplateName string
	Ingredients  []ResolvedIngredient
	Nutrition    Nutrients
	Trace        SelectionTrace
}

// SlotRef identifies a (date, slot) pair
type SlotRef struct {
	Date time.Time
	Slot MealSlot
}

// GeneratedMealPlan is the finished multi-day schedule
type GeneratedMealPlan struct {
	ID           uint
	RunID        string
	MemberID     uint
	StartDate    time.Time
	EndDate      time.Time
	Goal         GoalType
	Ratios       MacroRatios
	DailyTargets MacroTargets
	MealTargets  SlotTargets
	Meals        []PlannedMeal
	Skipped      []SlotRef
	Interrupted  bool
}

// Totals sums the macros of all meals on the given day
func (p *GeneratedMealPlan) Totals(day time.Time) MacroTargets {
	var t MacroTargets
	y, m, d := day.Date()
	for _, meal := range p.Meals {
		my, mm, md := meal.Date.Date()
		if my != y || mm != m || md != d {
			continue
		}
		t.Calories += meal.Nutrition.Calories
		t.Protein += meal.Nutrition.Protein
		t.Carbs += meal.Nutrition.Carbs
		t.Fat += meal.Nutrition.Fat
	}
	return t
}
