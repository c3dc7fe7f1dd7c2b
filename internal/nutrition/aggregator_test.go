package nutrition

import (
	"context"
	"errors"
	"testing"

	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"github.com/vladimiradmaev/meal-planner/internal/memstore"
)

func ptr(v float64) *float64 { return &v }

var (
	oats = domain.FoodNutrientRecord{
		ID: 1, Name: "Oats",
		Per100g: domain.Nutrients{Calories: 389, Protein: 16.9, Carbs: 66.3, Fat: 6.9, Fiber: ptr(10.6), Iron: ptr(4.7)},
	}
	milk = domain.FoodNutrientRecord{
		ID: 2, Name: "Milk", Aliases: []string{"whole milk"},
		Per100g: domain.Nutrients{Calories: 61, Protein: 3.2, Carbs: 4.8, Fat: 3.3, Calcium: ptr(113)},
	}
	egg = domain.FoodNutrientRecord{
		ID: 3, Name: "Egg",
		Per100g: domain.Nutrients{Calories: 143, Protein: 12.6, Carbs: 0.7, Fat: 9.5},
	}
)

func TestScale(t *testing.T) {
	got := Scale(oats, 200)
	if got.Calories != 778 || got.Protein != 33.8 || got.Carbs != 132.6 || got.Fat != 13.8 {
		t.Errorf("Expected oats x200g = 778/33.8/132.6/13.8, got %+v", got)
	}
	if got.Fiber == nil || *got.Fiber != 21.2 {
		t.Errorf("Expected fiber 21.2, got %v", got.Fiber)
	}
	if got.Sugar != nil {
		t.Errorf("Expected undefined sugar to stay nil, got %v", *got.Sugar)
	}
}

func TestAggregateRoundTrip(t *testing.T) {
	agg := NewAggregator(memstore.NewCatalog(oats, milk))

	total, resolved, err := agg.Aggregate(context.Background(), []Amount{{FoodID: 2, Grams: 100}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if total.Calories != milk.Per100g.Calories || total.Protein != milk.Per100g.Protein ||
		total.Carbs != milk.Per100g.Carbs || total.Fat != milk.Per100g.Fat {
		t.Errorf("Expected 100g aggregate to equal the record, got %+v", total)
	}
	if total.Calcium == nil || *total.Calcium != 113 {
		t.Errorf("Expected calcium 113, got %v", total.Calcium)
	}
	if len(resolved) != 1 || resolved[0].FoodName != "Milk" {
		t.Errorf("Expected one resolved ingredient named Milk, got %+v", resolved)
	}
}

func TestAggregateBatchesAndSums(t *testing.T) {
	catalog := memstore.NewCatalog(oats, milk, egg)
	agg := NewAggregator(catalog)

	amounts := []Amount{{FoodID: 1, Grams: 50}, {FoodID: 2, Grams: 200}, {FoodID: 1, Grams: 10}, {FoodID: 3, Grams: 60}}
	total, resolved, err := agg.Aggregate(context.Background(), amounts)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if catalog.Calls != 1 {
		t.Errorf("Expected a single catalog call, got %d", catalog.Calls)
	}
	if len(catalog.Queried[0]) != 3 {
		t.Errorf("Expected 3 distinct ids in the lookup, got %v", catalog.Queried[0])
	}
	if len(resolved) != 4 {
		t.Errorf("Expected 4 resolved ingredients, got %d", len(resolved))
	}

	// 194.5 + 122 + 38.9 + 85.8
	if total.Calories != 441.2 {
		t.Errorf("Expected 441.2 kcal, got %v", total.Calories)
	}
	if total.Fiber == nil || *total.Fiber != 6.4 {
		t.Errorf("Expected fiber only from oats (5.3 + 1.1), got %v", total.Fiber)
	}
	if total.Calcium == nil || *total.Calcium != 226 {
		t.Errorf("Expected calcium 226, got %v", total.Calcium)
	}
	if total.Sodium != nil {
		t.Errorf("Expected sodium to stay undefined, got %v", *total.Sodium)
	}
}

func TestAggregateFailures(t *testing.T) {
	t.Run("MissingFood", func(t *testing.T) {
		agg := NewAggregator(memstore.NewCatalog(oats))
		_, _, err := agg.Aggregate(context.Background(), []Amount{{FoodID: 99, Grams: 10}})
		if !apperrors.IsType(err, apperrors.ErrorTypeCatalog) {
			t.Errorf("Expected catalog error for unknown food, got %v", err)
		}
	})

	t.Run("CatalogDown", func(t *testing.T) {
		catalog := memstore.NewCatalog(oats)
		catalog.Err = errors.New("connection refused")
		_, _, err := NewAggregator(catalog).Aggregate(context.Background(), []Amount{{FoodID: 1, Grams: 10}})
		if !apperrors.IsType(err, apperrors.ErrorTypeCatalog) {
			t.Errorf("Expected catalog error, got %v", err)
		}
	})
}

func TestSumEmpty(t *testing.T) {
	got := Sum(nil)
	if got.Calories != 0 || got.Fiber != nil {
		t.Errorf("Expected zero summary, got %+v", got)
	}
}
