// Package matcher picks the meal template that best fits a slot's macro target.
//
// A slot evaluation runs load pool, goal filter, allergen filter, anti-repeat
// filter, score and select. It ends either with a Selection or with an
// unsatisfiable slot error.
package matcher

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"github.com/vladimiradmaev/meal-planner/internal/nutrition"
)

const (
	// Tolerance is the per-axis relative deviation above which the penalty applies
	Tolerance = 0.05
	// Penalty is added to the deviation sum of an over-tolerance candidate
	Penalty = 10.0
	// SeasonalBonus is subtracted from the score of a seasonal candidate
	SeasonalBonus = 0.1 * 10
)

// Request describes one slot evaluation
type Request struct {
	Slot      domain.MealSlot
	Goal      domain.GoalType
	Target    domain.MacroTargets
	Allergens []string
	Date      time.Time

	// Used is the run-scoped set of already selected template ids. Nil disables anti-repeat.
	Used map[uint]struct{}

	// Exclude drops one template id unless it is the only eligible one
	Exclude uint
}

// Selection is the winning template with its resolved nutrition
type Selection struct {
	Template    domain.MealTemplate
	Ingredients []domain.ResolvedIngredient
	Nutrition   domain.Nutrients
	Trace       domain.SelectionTrace
}

// Matcher evaluates slots against a template repository and food catalog
type Matcher struct {
	templates           domain.TemplateRepository
	aggregator          *nutrition.Aggregator
	logger              *slog.Logger
	allowRepeatFallback bool
}

// New creates a matcher. With allowRepeatFallback false an exhausted pool is unsatisfiable.
func New(templates domain.TemplateRepository, aggregator *nutrition.Aggregator, allowRepeatFallback bool, log *slog.Logger) *Matcher {
	return &Matcher{
		templates:           templates,
		aggregator:          aggregator,
		logger:              logger.OrDefault(log),
		allowRepeatFallback: allowRepeatFallback,
	}
}

// Select runs the full evaluation for one slot
func (m *Matcher) Select(ctx context.Context, req Request) (*Selection, error) {
	pool, err := m.templates.ListTemplates(ctx, req.Slot)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeCatalog) {
			return nil, err
		}
		return nil, apperrors.NewCatalogUnavailableError(err, "templates").WithContext("slot", req.Slot)
	}

	eligible := FilterByAllergens(FilterByGoal(pool, req.Goal), req.Allergens)
	if len(eligible) == 0 {
		return nil, apperrors.NewUnsatisfiableSlotError(string(req.Slot), "no template matches goal and allergens")
	}

	candidates := eligible
	repeatFallback := false
	if req.Exclude != 0 {
		if rest := without(candidates, req.Exclude); len(rest) > 0 {
			candidates = rest
		}
	}
	if req.Used != nil {
		fresh := FilterUsed(candidates, req.Used)
		if len(fresh) == 0 {
			if !m.allowRepeatFallback {
				return nil, apperrors.NewUnsatisfiableSlotError(string(req.Slot), "every eligible template is already used")
			}
			m.logger.Warn("Anti-repeat pool exhausted, allowing repeats",
				"slot", req.Slot,
				"date", req.Date.Format("2006-01-02"),
				"eligible", len(candidates))
			repeatFallback = true
		} else {
			candidates = fresh
		}
	}

	amounts := make([]nutrition.Amount, 0)
	for _, tpl := range candidates {
		amounts = append(amounts, nutrition.AmountsOf(tpl.Ingredients)...)
	}
	records, err := m.aggregator.Resolve(ctx, nutrition.UniqueFoodIDs(amounts))
	if err != nil {
		return nil, err
	}

	season := SeasonFor(req.Date.Month())
	var best *Selection
	for _, tpl := range candidates {
		total, resolved, err := nutrition.Combine(records, nutrition.AmountsOf(tpl.Ingredients))
		if err != nil {
			return nil, err
		}
		trace := Score(total.Macros(), req.Target, IsSeasonal(tpl, season))
		if best != nil && trace.Score >= best.Trace.Score {
			continue
		}
		trace.TemplateID = tpl.ID
		trace.Season = string(season)
		best = &Selection{Template: tpl, Ingredients: resolved, Nutrition: total, Trace: trace}
	}

	best.Trace.Candidates = len(candidates)
	best.Trace.RepeatFallback = repeatFallback

	m.logger.Debug("Template selected",
		"slot", req.Slot,
		"template_id", best.Template.ID,
		"score", best.Trace.Score,
		"candidates", len(candidates),
		"penalty", best.Trace.PenaltyApplied)

	return best, nil
}

// FilterByGoal keeps templates that list goal as suitable
func FilterByGoal(pool []domain.MealTemplate, goal domain.GoalType) []domain.MealTemplate {
	out := make([]domain.MealTemplate, 0, len(pool))
	for _, tpl := range pool {
		if tpl.SuitableFor(goal) {
			out = append(out, tpl)
		}
	}
	return out
}

// FilterByAllergens drops templates with an ingredient whose name or alias
// contains an allergen, case-insensitively
func FilterByAllergens(pool []domain.MealTemplate, allergens []string) []domain.MealTemplate {
	if len(allergens) == 0 {
		return pool
	}
	out := make([]domain.MealTemplate, 0, len(pool))
	for _, tpl := range pool {
		if !containsAllergen(tpl, allergens) {
			out = append(out, tpl)
		}
	}
	return out
}

func containsAllergen(tpl domain.MealTemplate, allergens []string) bool {
	for _, ing := range tpl.Ingredients {
		if containsAny(ing.FoodName, allergens) {
			return true
		}
		for _, alias := range ing.FoodAliases {
			if containsAny(alias, allergens) {
				return true
			}
		}
	}
	return false
}

// FilterUsed drops templates whose id is in used
func FilterUsed(pool []domain.MealTemplate, used map[uint]struct{}) []domain.MealTemplate {
	out := make([]domain.MealTemplate, 0, len(pool))
	for _, tpl := range pool {
		if _, ok := used[tpl.ID]; !ok {
			out = append(out, tpl)
		}
	}
	return out
}

func without(pool []domain.MealTemplate, id uint) []domain.MealTemplate {
	out := make([]domain.MealTemplate, 0, len(pool))
	for _, tpl := range pool {
		if tpl.ID != id {
			out = append(out, tpl)
		}
	}
	return out
}

func deviation(actual, target float64) float64 {
	return math.Abs(actual-target) / math.Max(target, 1)
}

// Score computes the composite score of actual against target. Lower is better.
func Score(actual, target domain.MacroTargets, seasonal bool) domain.SelectionTrace {
	d := domain.Deviations{
		Calories: deviation(actual.Calories, target.Calories),
		Protein:  deviation(actual.Protein, target.Protein),
		Carbs:    deviation(actual.Carbs, target.Carbs),
		Fat:      deviation(actual.Fat, target.Fat),
	}
	trace := domain.SelectionTrace{
		Deviations:   d,
		DeviationSum: d.Calories + d.Protein + d.Carbs + d.Fat,
	}
	score := trace.DeviationSum
	if d.Calories > Tolerance || d.Protein > Tolerance || d.Carbs > Tolerance || d.Fat > Tolerance {
		trace.PenaltyApplied = true
		score += Penalty
	}
	if seasonal {
		trace.SeasonalBonus = SeasonalBonus
		score -= SeasonalBonus
	}
	trace.Score = score
	return trace
}
