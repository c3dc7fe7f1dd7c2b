// Package macros turns an energy budget into daily and per-meal macro targets.
package macros

import (
	"fmt"
	"math"
	"time"

	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"github.com/vladimiradmaev/meal-planner/internal/metabolic"
)

const (
	kcalPerGramProtein = 4.0
	kcalPerGramCarbs   = 4.0
	kcalPerGramFat     = 9.0

	// ProteinFloor is the minimum protein per meal slot in grams
	ProteinFloor = 20.0

	ratioTolerance = 0.01

	loseWeightDeficit = 400.0
	gainMuscleSurplus = 300.0
)

var defaultRatios = map[domain.GoalType]domain.MacroRatios{
	domain.GoalLoseWeight:    {Carb: 0.45, Protein: 0.30, Fat: 0.25},
	domain.GoalGainMuscle:    {Carb: 0.40, Protein: 0.35, Fat: 0.25},
	domain.GoalMaintain:      {Carb: 0.50, Protein: 0.20, Fat: 0.30},
	domain.GoalImproveHealth: {Carb: 0.50, Protein: 0.20, Fat: 0.30},
}

// SlotWeights is the share of the daily targets each slot receives
var SlotWeights = map[domain.MealSlot]float64{
	domain.SlotBreakfast: 0.30,
	domain.SlotLunch:     0.35,
	domain.SlotDinner:    0.25,
	domain.SlotSnack:     0.10,
}

// TargetCalories adjusts a TDEE for the goal
func TargetCalories(tdee float64, goal domain.GoalType) float64 {
	switch goal {
	case domain.GoalLoseWeight:
		return tdee - loseWeightDeficit
	case domain.GoalGainMuscle:
		return tdee + gainMuscleSurplus
	default:
		return tdee
	}
}

// DefaultRatios returns the fixed ratios for a goal. Unknown goals get the maintain split.
func DefaultRatios(goal domain.GoalType) domain.MacroRatios {
	if r, ok := defaultRatios[goal]; ok {
		return r
	}
	return defaultRatios[domain.GoalMaintain]
}

// ValidateRatios fails when the ratios are negative or do not sum to 1
func ValidateRatios(r domain.MacroRatios) error {
	if r.Carb < 0 || r.Protein < 0 || r.Fat < 0 {
		return apperrors.NewValidationError("macro ratios must not be negative")
	}
	if math.Abs(r.Sum()-1) > ratioTolerance {
		return apperrors.NewValidationError(fmt.Sprintf("macro ratios must sum to 1, got %.3f", r.Sum())).
			WithContext("carb", r.Carb).
			WithContext("protein", r.Protein).
			WithContext("fat", r.Fat)
	}
	return nil
}

// ResolveRatios prefers the goal's custom ratios over the defaults
func ResolveRatios(goal domain.HealthGoal) (domain.MacroRatios, error) {
	if goal.CustomRatios == nil {
		return DefaultRatios(goal.Type), nil
	}
	if err := ValidateRatios(*goal.CustomRatios); err != nil {
		return domain.MacroRatios{}, err
	}
	return *goal.CustomRatios, nil
}

// DailyTargets converts calories and ratios to whole kcal and grams
func DailyTargets(calories float64, ratios domain.MacroRatios) (domain.MacroTargets, error) {
	if err := ValidateRatios(ratios); err != nil {
		return domain.MacroTargets{}, err
	}
	if calories <= 0 {
		return domain.MacroTargets{}, apperrors.NewValidationError(fmt.Sprintf("calorie target must be positive, got %.1f", calories))
	}
	return domain.MacroTargets{
		Calories: math.Round(calories),
		Protein:  math.Round(calories * ratios.Protein / kcalPerGramProtein),
		Carbs:    math.Round(calories * ratios.Carb / kcalPerGramCarbs),
		Fat:      math.Round(calories * ratios.Fat / kcalPerGramFat),
	}, nil
}

// PerMealTargets splits daily targets over the four slots and applies the protein floor.
// When the daily protein is below four floors the floor wins and the slot sum exceeds it.
func PerMealTargets(daily domain.MacroTargets) domain.SlotTargets {
	calories := split(daily.Calories)
	carbs := split(daily.Carbs)
	fat := split(daily.Fat)
	protein := proteinWithFloor(daily.Protein)

	out := make(domain.SlotTargets, len(domain.MealSlots))
	for _, slot := range domain.MealSlots {
		out[slot] = domain.MacroTargets{
			Calories: calories[slot],
			Protein:  protein[slot],
			Carbs:    carbs[slot],
			Fat:      fat[slot],
		}
	}
	return out
}

func split(total float64) map[domain.MealSlot]float64 {
	parts := make(map[domain.MealSlot]float64, len(domain.MealSlots))
	for _, slot := range domain.MealSlots {
		parts[slot] = total * SlotWeights[slot]
	}
	return roundPreservingTotal(parts, math.Round(total))
}

func proteinWithFloor(total float64) map[domain.MealSlot]float64 {
	parts := make(map[domain.MealSlot]float64, len(domain.MealSlots))
	deficit := 0.0
	for _, slot := range domain.MealSlots {
		p := total * SlotWeights[slot]
		if p < ProteinFloor {
			deficit += ProteinFloor - p
			p = ProteinFloor
		}
		parts[slot] = p
	}
	if deficit == 0 {
		return roundPreservingTotal(parts, math.Round(total))
	}

	// snack donates first, down to the floor
	if surplus := parts[domain.SlotSnack] - ProteinFloor; surplus > 0 {
		take := math.Min(surplus, deficit)
		parts[domain.SlotSnack] -= take
		deficit -= take
	}

	var surplusTotal float64
	for _, slot := range domain.MealSlots {
		if slot == domain.SlotSnack {
			continue
		}
		surplusTotal += parts[slot] - ProteinFloor
	}

	if surplusTotal < deficit {
		for _, slot := range domain.MealSlots {
			parts[slot] = ProteinFloor
		}
		return parts
	}

	if deficit > 0 {
		for _, slot := range domain.MealSlots {
			if slot == domain.SlotSnack {
				continue
			}
			surplus := parts[slot] - ProteinFloor
			parts[slot] -= deficit * surplus / surplusTotal
		}
	}
	return roundPreservingTotal(parts, math.Round(total))
}

// roundPreservingTotal rounds every part to whole units and puts the residue
// on the largest part so the parts add up to total.
func roundPreservingTotal(parts map[domain.MealSlot]float64, total float64) map[domain.MealSlot]float64 {
	var sum float64
	largest := domain.MealSlots[0]
	for _, slot := range domain.MealSlots {
		parts[slot] = math.Round(parts[slot])
		sum += parts[slot]
		if parts[slot] > parts[largest] {
			largest = slot
		}
	}
	parts[largest] += total - sum
	return parts
}

// Targets is the complete energy and macro plan for one member
type Targets struct {
	TDEE     float64
	Calories float64
	Ratios   domain.MacroRatios
	Daily    domain.MacroTargets
	PerMeal  domain.SlotTargets
}

// Plan computes every target for a profile and goal as of now
func Plan(profile domain.MemberProfile, goal domain.HealthGoal, now time.Time) (*Targets, error) {
	if !goal.Type.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown goal type %q", goal.Type))
	}
	tdee, err := metabolic.ProfileTDEE(profile, now)
	if err != nil {
		return nil, err
	}
	ratios, err := ResolveRatios(goal)
	if err != nil {
		return nil, err
	}
	calories := TargetCalories(tdee, goal.Type)
	daily, err := DailyTargets(calories, ratios)
	if err != nil {
		return nil, err
	}
	return &Targets{
		TDEE:     tdee,
		Calories: calories,
		Ratios:   ratios,
		Daily:    daily,
		PerMeal:  PerMealTargets(daily),
	}, nil
}
