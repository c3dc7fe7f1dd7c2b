package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"github.com/vladimiradmaev/meal-planner/internal/repository"
)

// CatalogFile is the JSON layout of a food and template import
type CatalogFile struct {
	Foods     []CatalogFood     `json:"foods"`
	Templates []CatalogTemplate `json:"templates"`
}

type CatalogFood struct {
	Name    string           `json:"name"`
	Aliases []string         `json:"aliases"`
	Per100g domain.Nutrients `json:"per_100g"`
}

type CatalogTemplate struct {
	Name        string   `json:"name"`
	Slot        string   `json:"slot"`
	Goals       []string `json:"goals"`
	Tags        []string `json:"tags"`
	Ingredients []struct {
		Food  string  `json:"food"`
		Grams float64 `json:"grams"`
	} `json:"ingredients"`
}

// CatalogImporter writes a whole catalog in one transaction
type CatalogImporter interface {
	ImportCatalog(ctx context.Context, foods []domain.FoodNutrientRecord, templates []domain.MealTemplate) (*repository.CatalogImport, error)
}

// FoodInvalidator drops cached food records
type FoodInvalidator interface {
	Invalidate(ctx context.Context, foodIDs ...uint) error
}

// CatalogService imports foods and templates into the catalog
type CatalogService struct {
	store  CatalogImporter
	cache  FoodInvalidator
	logger *slog.Logger
}

// NewCatalogService builds the importer. cache may be nil when foods are not cached.
func NewCatalogService(store CatalogImporter, cache FoodInvalidator, log *slog.Logger) *CatalogService {
	return &CatalogService{store: store, cache: cache, logger: logger.OrDefault(log)}
}

// ParseCatalog decodes and validates a catalog file. Ingredients must name a food of the same file.
func ParseCatalog(r io.Reader) (*CatalogFile, error) {
	var file CatalogFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid catalog file: %v", err))
	}

	names := make(map[string]struct{}, len(file.Foods))
	for _, f := range file.Foods {
		key := strings.ToLower(strings.TrimSpace(f.Name))
		if key == "" {
			return nil, apperrors.NewValidationError("food without name")
		}
		if _, dup := names[key]; dup {
			return nil, apperrors.NewValidationError(fmt.Sprintf("duplicate food %q", f.Name))
		}
		names[key] = struct{}{}
	}

	for _, t := range file.Templates {
		slot := domain.MealSlot(t.Slot)
		if !validSlot(slot) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("template %q: unknown slot %q", t.Name, t.Slot))
		}
		for _, g := range t.Goals {
			if !domain.GoalType(g).Valid() {
				return nil, apperrors.NewValidationError(fmt.Sprintf("template %q: unknown goal %q", t.Name, g))
			}
		}
		if len(t.Ingredients) == 0 {
			return nil, apperrors.NewValidationError(fmt.Sprintf("template %q has no ingredients", t.Name))
		}
		for _, ing := range t.Ingredients {
			if _, ok := names[strings.ToLower(strings.TrimSpace(ing.Food))]; !ok {
				return nil, apperrors.NewValidationError(fmt.Sprintf("template %q: unknown food %q", t.Name, ing.Food))
			}
			if ing.Grams <= 0 {
				return nil, apperrors.NewValidationError(fmt.Sprintf("template %q: grams of %q must be positive", t.Name, ing.Food))
			}
		}
	}
	return &file, nil
}

func validSlot(slot domain.MealSlot) bool {
	for _, s := range domain.MealSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// Import upserts foods by name and templates by name and slot. Running it
// again with the same file updates rows in place.
func (s *CatalogService) Import(ctx context.Context, file *CatalogFile) (*repository.CatalogImport, error) {
	foods := make([]domain.FoodNutrientRecord, 0, len(file.Foods))
	for _, f := range file.Foods {
		foods = append(foods, domain.FoodNutrientRecord{
			Name:    strings.TrimSpace(f.Name),
			Aliases: f.Aliases,
			Per100g: f.Per100g,
		})
	}

	templates := make([]domain.MealTemplate, 0, len(file.Templates))
	for _, t := range file.Templates {
		tpl := domain.MealTemplate{Name: t.Name, Slot: domain.MealSlot(t.Slot), Tags: t.Tags}
		for _, g := range t.Goals {
			tpl.SuitableGoals = append(tpl.SuitableGoals, domain.GoalType(g))
		}
		for _, ing := range t.Ingredients {
			tpl.Ingredients = append(tpl.Ingredients, domain.TemplateIngredient{FoodName: ing.Food, Grams: ing.Grams})
		}
		templates = append(templates, tpl)
	}

	result, err := s.store.ImportCatalog(ctx, foods, templates)
	if err != nil {
		return nil, fmt.Errorf("failed to import catalog: %w", err)
	}

	if s.cache != nil && len(result.UpdatedFoodIDs) > 0 {
		if err := s.cache.Invalidate(ctx, result.UpdatedFoodIDs...); err != nil {
			s.logger.Warn("Failed to invalidate cached foods", "count", len(result.UpdatedFoodIDs), "error", err)
		}
	}

	s.logger.Info("Catalog imported",
		"foods_created", result.FoodsCreated,
		"foods_updated", result.FoodsUpdated,
		"templates_created", result.TemplatesCreated,
		"templates_updated", result.TemplatesUpdated)
	return result, nil
}
