package metabolic

import (
	"math"
	"testing"
	"time"

	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestAge(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		birthdate time.Time
		want      int
	}{
		{"birthday passed", time.Date(1994, 3, 1, 0, 0, 0, 0, time.UTC), 30},
		{"birthday today", time.Date(1994, 6, 15, 0, 0, 0, 0, time.UTC), 30},
		{"birthday tomorrow", time.Date(1994, 6, 16, 0, 0, 0, 0, time.UTC), 29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Age(tt.birthdate, now); got != tt.want {
				t.Errorf("Expected age %d, got %d", tt.want, got)
			}
		})
	}
}

func TestBMR(t *testing.T) {
	male, err := BMR(70, 175, 30, domain.GenderMale)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if male != 1648.75 {
		t.Errorf("Expected male BMR 1648.75, got %v", male)
	}

	female, err := BMR(70, 175, 30, domain.GenderFemale)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if female != 1482.75 {
		t.Errorf("Expected female BMR 1482.75, got %v", female)
	}
}

func TestBMRValidation(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		height float64
		age    int
		gender domain.Gender
	}{
		{"zero weight", 0, 175, 30, domain.GenderMale},
		{"negative height", 70, -1, 30, domain.GenderMale},
		{"zero age", 70, 175, 0, domain.GenderFemale},
		{"unknown gender", 70, 175, 30, domain.Gender("other")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BMR(tt.weight, tt.height, tt.age, tt.gender)
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestTDEE(t *testing.T) {
	factor, err := ActivityFactor(domain.ActivityModerate)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got := TDEE(1648.75, factor)
	if !almostEqual(got, 2555.5625, 1e-9) {
		t.Errorf("Expected TDEE 2555.5625, got %v", got)
	}

	if _, err := ActivityFactor("couch"); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for unknown activity level, got %v", err)
	}
}

func TestProfileTDEE(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	birth := time.Date(1994, 1, 10, 0, 0, 0, 0, time.UTC)
	profile := domain.MemberProfile{
		ID:            1,
		WeightKg:      70,
		HeightCm:      175,
		Birthdate:     &birth,
		Gender:        domain.GenderMale,
		ActivityLevel: domain.ActivityModerate,
	}

	first, err := ProfileTDEE(profile, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, _ := ProfileTDEE(profile, now)
	if first != second {
		t.Errorf("Expected deterministic TDEE, got %v and %v", first, second)
	}
	if !almostEqual(first, 2555.56, 0.01) {
		t.Errorf("Expected TDEE ~2555.56, got %v", first)
	}

	profile.Birthdate = nil
	if _, err := ProfileTDEE(profile, now); !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for missing birthdate, got %v", err)
	}
}
