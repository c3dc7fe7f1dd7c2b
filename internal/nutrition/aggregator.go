// Package nutrition scales per-100g food records and sums them over ingredient lists.
package nutrition

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
)

// Amount is a food reference with a gram amount
type Amount struct {
	FoodID uint
	Grams  float64
}

// AmountsOf converts template ingredients to amounts
func AmountsOf(ingredients []domain.TemplateIngredient) []Amount {
	out := make([]Amount, len(ingredients))
	for i, ing := range ingredients {
		out[i] = Amount{FoodID: ing.FoodID, Grams: ing.Grams}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func scaleOpt(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	s := round1(*v * factor)
	return &s
}

// Scale multiplies every present nutrient of the record by grams/100
func Scale(record domain.FoodNutrientRecord, grams float64) domain.Nutrients {
	f := grams / 100
	n := record.Per100g
	return domain.Nutrients{
		Calories: round1(n.Calories * f),
		Protein:  round1(n.Protein * f),
		Carbs:    round1(n.Carbs * f),
		Fat:      round1(n.Fat * f),
		Fiber:    scaleOpt(n.Fiber, f),
		Sugar:    scaleOpt(n.Sugar, f),
		Sodium:   scaleOpt(n.Sodium, f),
		VitaminA: scaleOpt(n.VitaminA, f),
		VitaminC: scaleOpt(n.VitaminC, f),
		Calcium:  scaleOpt(n.Calcium, f),
		Iron:     scaleOpt(n.Iron, f),
	}
}

func addOpt(total *float64, v *float64) *float64 {
	if v == nil {
		return total
	}
	if total == nil {
		s := *v
		return &s
	}
	s := round1(*total + *v)
	return &s
}

// Sum adds nutrient sets. A micro-nutrient stays nil unless at least one item defines it.
func Sum(items []domain.Nutrients) domain.Nutrients {
	var out domain.Nutrients
	for _, n := range items {
		out.Calories += n.Calories
		out.Protein += n.Protein
		out.Carbs += n.Carbs
		out.Fat += n.Fat
		out.Fiber = addOpt(out.Fiber, n.Fiber)
		out.Sugar = addOpt(out.Sugar, n.Sugar)
		out.Sodium = addOpt(out.Sodium, n.Sodium)
		out.VitaminA = addOpt(out.VitaminA, n.VitaminA)
		out.VitaminC = addOpt(out.VitaminC, n.VitaminC)
		out.Calcium = addOpt(out.Calcium, n.Calcium)
		out.Iron = addOpt(out.Iron, n.Iron)
	}
	out.Calories = round1(out.Calories)
	out.Protein = round1(out.Protein)
	out.Carbs = round1(out.Carbs)
	out.Fat = round1(out.Fat)
	return out
}

// UniqueFoodIDs returns the distinct food ids in ascending order
func UniqueFoodIDs(amounts []Amount) []uint {
	seen := make(map[uint]struct{}, len(amounts))
	ids := make([]uint, 0, len(amounts))
	for _, a := range amounts {
		if _, ok := seen[a.FoodID]; ok {
			continue
		}
		seen[a.FoodID] = struct{}{}
		ids = append(ids, a.FoodID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Aggregator resolves food records through the catalog and sums ingredient nutrition
type Aggregator struct {
	catalog domain.FoodCatalog
}

// NewAggregator creates an aggregator backed by catalog
func NewAggregator(catalog domain.FoodCatalog) *Aggregator {
	return &Aggregator{catalog: catalog}
}

// Resolve fetches all records for ids in one catalog call
func (a *Aggregator) Resolve(ctx context.Context, ids []uint) (map[uint]domain.FoodNutrientRecord, error) {
	if len(ids) == 0 {
		return map[uint]domain.FoodNutrientRecord{}, nil
	}
	records, err := a.catalog.ResolveMany(ctx, ids)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeCatalog) {
			return nil, err
		}
		return nil, apperrors.NewCatalogUnavailableError(err, "food")
	}
	for _, id := range ids {
		if _, ok := records[id]; !ok {
			return nil, apperrors.NewCatalogUnavailableError(fmt.Errorf("food %d missing from catalog", id), "food").
				WithContext("food_id", id)
		}
	}
	return records, nil
}

// Combine scales and sums amounts against already resolved records
func Combine(records map[uint]domain.FoodNutrientRecord, amounts []Amount) (domain.Nutrients, []domain.ResolvedIngredient, error) {
	resolved := make([]domain.ResolvedIngredient, 0, len(amounts))
	parts := make([]domain.Nutrients, 0, len(amounts))
	for _, am := range amounts {
		rec, ok := records[am.FoodID]
		if !ok {
			return domain.Nutrients{}, nil, apperrors.NewCatalogUnavailableError(fmt.Errorf("food %d not resolved", am.FoodID), "food").
				WithContext("food_id", am.FoodID)
		}
		n := Scale(rec, am.Grams)
		parts = append(parts, n)
		resolved = append(resolved, domain.ResolvedIngredient{
			FoodID:    rec.ID,
			FoodName:  rec.Name,
			Grams:     am.Grams,
			Nutrients: n,
		})
	}
	return Sum(parts), resolved, nil
}

// Aggregate resolves every distinct food once, then scales and sums
func (a *Aggregator) Aggregate(ctx context.Context, amounts []Amount) (domain.Nutrients, []domain.ResolvedIngredient, error) {
	records, err := a.Resolve(ctx, UniqueFoodIDs(amounts))
	if err != nil {
		return domain.Nutrients{}, nil, err
	}
	return Combine(records, amounts)
}
