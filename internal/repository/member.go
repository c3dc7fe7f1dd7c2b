package repository

import (
	"context"
	"strings"

	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"gorm.io/gorm"
)

// MemberRepository handles members, their goals and allergies
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// GetOrCreateMember gets an existing member or creates a new one
func (r *MemberRepository) GetOrCreateMember(ctx context.Context, telegramID int64, username, firstName, lastName string) (*database.Member, error) {
	member := database.Member{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
	}
	if err := r.db.WithContext(ctx).FirstOrCreate(&member, database.Member{TelegramID: telegramID}).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &member, nil
}

// GetMemberByTelegramID gets a member by their Telegram ID
func (r *MemberRepository) GetMemberByTelegramID(ctx context.Context, telegramID int64) (*database.Member, error) {
	var member database.Member
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&member).Error; err != nil {
		return nil, lookupError(err, "MEMBER_NOT_FOUND", "member", telegramID)
	}
	return &member, nil
}

// UpdateProfile stores the physiological fields of a member
func (r *MemberRepository) UpdateProfile(ctx context.Context, p domain.MemberProfile) error {
	res := r.db.WithContext(ctx).Model(&database.Member{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"weight_kg":      p.WeightKg,
		"height_cm":      p.HeightCm,
		"birthdate":      p.Birthdate,
		"gender":         string(p.Gender),
		"activity_level": string(p.ActivityLevel),
	})
	if res.Error != nil {
		return apperrors.NewDatabaseError(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("MEMBER_NOT_FOUND", "member", p.ID)
	}
	return nil
}

// GetProfile implements domain.MemberProvider
func (r *MemberRepository) GetProfile(ctx context.Context, memberID uint) (*domain.MemberProfile, error) {
	var member database.Member
	if err := r.db.WithContext(ctx).First(&member, memberID).Error; err != nil {
		return nil, lookupError(err, "MEMBER_NOT_FOUND", "member", memberID)
	}
	profile := profileToDomain(member)
	return &profile, nil
}

// GetActiveGoal implements domain.MemberProvider
func (r *MemberRepository) GetActiveGoal(ctx context.Context, memberID uint) (*domain.HealthGoal, error) {
	var goal database.HealthGoal
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND active = ?", memberID, true).
		Order("id DESC").
		First(&goal).Error
	if err != nil {
		return nil, lookupError(err, "GOAL_NOT_FOUND", "active goal for member", memberID)
	}
	g := goalToDomain(goal)
	return &g, nil
}

// SetActiveGoal deactivates previous goals and stores the new one as active
func (r *MemberRepository) SetActiveGoal(ctx context.Context, memberID uint, goalType domain.GoalType, ratios *domain.MacroRatios) (*domain.HealthGoal, error) {
	row := database.HealthGoal{MemberID: memberID, Type: string(goalType), Active: true}
	if ratios != nil {
		carb, protein, fat := ratios.Carb, ratios.Protein, ratios.Fat
		row.CarbRatio, row.ProteinRatio, row.FatRatio = &carb, &protein, &fat
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&database.HealthGoal{}).
			Where("member_id = ? AND active = ?", memberID, true).
			Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	g := goalToDomain(row)
	return &g, nil
}

// AddAllergy declares an allergen for the member
func (r *MemberRepository) AddAllergy(ctx context.Context, memberID uint, allergen string) error {
	allergen = strings.TrimSpace(allergen)
	if allergen == "" {
		return apperrors.NewValidationError("allergen name must not be empty")
	}
	if err := r.db.WithContext(ctx).Create(&database.MemberAllergy{MemberID: memberID, Allergen: allergen}).Error; err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// ListAllergenNames implements domain.AllergyRegistry
func (r *MemberRepository) ListAllergenNames(ctx context.Context, memberID uint) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&database.MemberAllergy{}).
		Where("member_id = ?", memberID).
		Order("id").
		Pluck("allergen", &names).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return names, nil
}
