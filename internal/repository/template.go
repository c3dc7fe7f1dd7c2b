package repository

import (
	"context"

	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"gorm.io/gorm"
)

// TemplateRepository lists meal templates with their foods preloaded
type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// ListTemplates returns the templates of a slot in id order
func (r *TemplateRepository) ListTemplates(ctx context.Context, slot domain.MealSlot) ([]domain.MealTemplate, error) {
	var rows []database.MealTemplate
	err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Preload("Ingredients.Food").
		Where("slot = ?", string(slot)).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError(err, "templates")
	}

	out := make([]domain.MealTemplate, 0, len(rows))
	for _, row := range rows {
		out = append(out, templateToDomain(row))
	}
	return out, nil
}
