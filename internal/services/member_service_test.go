package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"github.com/vladimiradmaev/meal-planner/internal/repository"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db, logger.Discard()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func newMemberService(t *testing.T) *MemberService {
	t.Helper()
	return NewMemberService(repository.NewMemberRepository(openTestDB(t)), logger.Discard())
}

func TestRegisterMember(t *testing.T) {
	s := newMemberService(t)
	ctx := context.Background()

	first, err := s.RegisterMember(ctx, 100, "olga", "Olga", "K")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := s.RegisterMember(ctx, 100, "olga", "Olga", "K")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Expected registration to be idempotent, got ids %d and %d", first.ID, second.ID)
	}

	found, err := s.GetMemberByTelegramID(ctx, 100)
	if err != nil || found.ID != first.ID {
		t.Errorf("Expected to find member %d, got %v %v", first.ID, found, err)
	}
	if _, err := s.GetMemberByTelegramID(ctx, 5); !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	s := newMemberService(t)
	ctx := context.Background()
	member, err := s.RegisterMember(ctx, 1, "u", "U", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	birth := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := domain.MemberProfile{
		ID: member.ID, WeightKg: 80, HeightCm: 180, Birthdate: &birth,
		Gender: domain.GenderMale, ActivityLevel: domain.ActivityActive,
	}

	tests := []struct {
		name   string
		mutate func(p *domain.MemberProfile)
	}{
		{"NoBirthdate", func(p *domain.MemberProfile) { p.Birthdate = nil }},
		{"ZeroWeight", func(p *domain.MemberProfile) { p.WeightKg = 0 }},
		{"UnknownGender", func(p *domain.MemberProfile) { p.Gender = "other" }},
		{"UnknownActivity", func(p *domain.MemberProfile) { p.ActivityLevel = "extreme" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := s.UpdateProfile(ctx, p); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}

	if err := s.UpdateProfile(ctx, valid); err != nil {
		t.Errorf("Expected valid profile to be stored, got %v", err)
	}
}

func TestSetGoal(t *testing.T) {
	s := newMemberService(t)
	ctx := context.Background()
	member, _ := s.RegisterMember(ctx, 1, "u", "U", "")

	if _, err := s.SetGoal(ctx, member.ID, "bulk", nil); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for unknown goal, got %v", err)
	}
	bad := &domain.MacroRatios{Carb: 0.6, Protein: 0.3, Fat: 0.3}
	if _, err := s.SetGoal(ctx, member.ID, domain.GoalMaintain, bad); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for bad ratios, got %v", err)
	}
	goal, err := s.SetGoal(ctx, member.ID, domain.GoalMaintain, nil)
	if err != nil || !goal.Active || goal.Type != domain.GoalMaintain {
		t.Errorf("Expected active maintain goal, got %+v %v", goal, err)
	}

	if err := s.AddAllergy(ctx, member.ID, "milk"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	names, err := s.ListAllergies(ctx, member.ID)
	if err != nil || len(names) != 1 {
		t.Errorf("Expected one allergy, got %v %v", names, err)
	}
}
