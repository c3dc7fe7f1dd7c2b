package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"github.com/vladimiradmaev/meal-planner/internal/macros"
	"github.com/vladimiradmaev/meal-planner/internal/metabolic"
	"github.com/vladimiradmaev/meal-planner/internal/repository"
)

type MemberService struct {
	repo   *repository.MemberRepository
	logger *slog.Logger
}

func NewMemberService(repo *repository.MemberRepository, log *slog.Logger) *MemberService {
	return &MemberService{repo: repo, logger: logger.OrDefault(log)}
}

func (s *MemberService) RegisterMember(ctx context.Context, telegramID int64, username, firstName, lastName string) (*database.Member, error) {
	member, err := s.repo.GetOrCreateMember(ctx, telegramID, username, firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("failed to register member: %w", err)
	}
	return member, nil
}

func (s *MemberService) GetMemberByTelegramID(ctx context.Context, telegramID int64) (*database.Member, error) {
	return s.repo.GetMemberByTelegramID(ctx, telegramID)
}

// UpdateProfile validates the physiological fields before storing them
func (s *MemberService) UpdateProfile(ctx context.Context, profile domain.MemberProfile) error {
	if profile.Birthdate == nil {
		return apperrors.NewValidationError("birthdate is required")
	}
	if _, err := metabolic.BMR(profile.WeightKg, profile.HeightCm, 1, profile.Gender); err != nil {
		return err
	}
	if _, err := metabolic.ActivityFactor(profile.ActivityLevel); err != nil {
		return err
	}
	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return err
	}
	s.logger.Info("Member profile updated", "member_id", profile.ID)
	return nil
}

// SetGoal makes goalType the member's only active goal. Custom ratios are optional.
func (s *MemberService) SetGoal(ctx context.Context, memberID uint, goalType domain.GoalType, ratios *domain.MacroRatios) (*domain.HealthGoal, error) {
	if !goalType.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown goal type %q", goalType))
	}
	if ratios != nil {
		if err := macros.ValidateRatios(*ratios); err != nil {
			return nil, err
		}
	}
	goal, err := s.repo.SetActiveGoal(ctx, memberID, goalType, ratios)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Member goal set", "member_id", memberID, "goal", goalType)
	return goal, nil
}

func (s *MemberService) AddAllergy(ctx context.Context, memberID uint, allergen string) error {
	return s.repo.AddAllergy(ctx, memberID, allergen)
}

func (s *MemberService) ListAllergies(ctx context.Context, memberID uint) ([]string, error) {
	return s.repo.ListAllergenNames(ctx, memberID)
}
