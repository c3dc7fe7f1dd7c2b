package repository

import (
	"context"

	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"gorm.io/gorm"
)

// FoodRepository is the database-backed food catalog
type FoodRepository struct {
	db *gorm.DB
}

func NewFoodRepository(db *gorm.DB) *FoodRepository {
	return &FoodRepository{db: db}
}

// ResolveMany loads all requested foods in one query. Unknown ids are absent from the result.
func (r *FoodRepository) ResolveMany(ctx context.Context, foodIDs []uint) (map[uint]domain.FoodNutrientRecord, error) {
	out := make(map[uint]domain.FoodNutrientRecord, len(foodIDs))
	if len(foodIDs) == 0 {
		return out, nil
	}

	var foods []database.Food
	if err := r.db.WithContext(ctx).Where("id IN ?", foodIDs).Find(&foods).Error; err != nil {
		return nil, apperrors.NewCatalogUnavailableError(err, "food")
	}
	for _, f := range foods {
		out[f.ID] = foodToDomain(f)
	}
	return out, nil
}
