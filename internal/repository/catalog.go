package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogImport counts what an import wrote
type CatalogImport struct {
	FoodsCreated     int
	FoodsUpdated     int
	TemplatesCreated int
	TemplatesUpdated int
	// UpdatedFoodIDs lists foods whose stored values were replaced
	UpdatedFoodIDs []uint
}

// ImportCatalog upserts foods by name and templates by name and slot in one
// transaction. Template ingredients reference foods by FoodName, case-insensitively.
// On any error nothing is written.
func (s *Store) ImportCatalog(ctx context.Context, foods []domain.FoodNutrientRecord, templates []domain.MealTemplate) (*CatalogImport, error) {
	result := &CatalogImport{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]uint, len(foods))
		for _, f := range foods {
			id, created, err := upsertFood(tx, f)
			if err != nil {
				return err
			}
			if created {
				result.FoodsCreated++
			} else {
				result.FoodsUpdated++
				result.UpdatedFoodIDs = append(result.UpdatedFoodIDs, id)
			}
			ids[strings.ToLower(strings.TrimSpace(f.Name))] = id
		}

		for _, tpl := range templates {
			created, err := upsertTemplate(tx, tpl, ids)
			if err != nil {
				return err
			}
			if created {
				result.TemplatesCreated++
			} else {
				result.TemplatesUpdated++
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return result, nil
}

func upsertFood(tx *gorm.DB, record domain.FoodNutrientRecord) (uint, bool, error) {
	row := foodFromDomain(record)
	row.Name = strings.TrimSpace(row.Name)

	var existing database.Food
	err := tx.Unscoped().Where("LOWER(name) = ?", strings.ToLower(row.Name)).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Create(&row).Error; err != nil {
			return 0, false, err
		}
		return row.ID, true, nil
	}
	if err != nil {
		return 0, false, err
	}

	// soft-deleted rows still hold the unique name, so they are revived
	row.ID = existing.ID
	row.CreatedAt = existing.CreatedAt
	if err := tx.Unscoped().Save(&row).Error; err != nil {
		return 0, false, err
	}
	return row.ID, false, nil
}

func upsertTemplate(tx *gorm.DB, tpl domain.MealTemplate, foodIDs map[string]uint) (bool, error) {
	row := database.MealTemplate{
		Name: strings.TrimSpace(tpl.Name),
		Slot: string(tpl.Slot),
		Tags: tpl.Tags,
	}
	for _, g := range tpl.SuitableGoals {
		row.SuitableGoals = append(row.SuitableGoals, string(g))
	}

	ingredients := make([]database.MealTemplateIngredient, 0, len(tpl.Ingredients))
	for i, ing := range tpl.Ingredients {
		foodID, ok := foodIDs[strings.ToLower(strings.TrimSpace(ing.FoodName))]
		if !ok {
			return false, apperrors.NewValidationError(fmt.Sprintf("template %q: unknown food %q", tpl.Name, ing.FoodName))
		}
		ingredients = append(ingredients, database.MealTemplateIngredient{FoodID: foodID, Grams: ing.Grams, Position: i})
	}

	var existing database.MealTemplate
	err := tx.Where("LOWER(name) = ? AND slot = ?", strings.ToLower(row.Name), row.Slot).First(&existing).Error
	created := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !created {
		return false, err
	}

	if created {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return false, err
		}
	} else {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		if err := tx.Omit(clause.Associations).Save(&row).Error; err != nil {
			return false, err
		}
		if err := tx.Where("meal_template_id = ?", row.ID).Delete(&database.MealTemplateIngredient{}).Error; err != nil {
			return false, err
		}
	}

	for i := range ingredients {
		ingredients[i].MealTemplateID = row.ID
	}
	if len(ingredients) > 0 {
		if err := tx.Omit(clause.Associations).Create(&ingredients).Error; err != nil {
			return false, err
		}
	}
	return created, nil
}
