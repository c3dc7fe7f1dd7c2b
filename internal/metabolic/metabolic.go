// Package metabolic implements the Mifflin-St Jeor energy model.
package metabolic

import (
	"fmt"
	"time"

	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
)

var activityFactors = map[domain.ActivityLevel]float64{
	domain.ActivitySedentary:  1.2,
	domain.ActivityLight:      1.375,
	domain.ActivityModerate:   1.55,
	domain.ActivityActive:     1.725,
	domain.ActivityVeryActive: 1.9,
}

// Age returns full years between birthdate and now.
func Age(birthdate, now time.Time) int {
	age := now.Year() - birthdate.Year()
	if now.Before(birthdate.AddDate(age, 0, 0)) {
		age--
	}
	return age
}

// BMR returns the basal metabolic rate in kcal/day.
func BMR(weightKg, heightCm float64, age int, gender domain.Gender) (float64, error) {
	if weightKg <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("weight must be positive, got %.1f", weightKg))
	}
	if heightCm <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("height must be positive, got %.1f", heightCm))
	}
	if age <= 0 {
		return 0, apperrors.NewValidationError(fmt.Sprintf("age must be positive, got %d", age))
	}

	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch gender {
	case domain.GenderMale:
		return base + 5, nil
	case domain.GenderFemale:
		return base - 161, nil
	default:
		return 0, apperrors.NewValidationError(fmt.Sprintf("unknown gender %q", gender))
	}
}

// ActivityFactor looks up the TDEE multiplier for a level.
func ActivityFactor(level domain.ActivityLevel) (float64, error) {
	f, ok := activityFactors[level]
	if !ok {
		return 0, apperrors.NewValidationError(fmt.Sprintf("unknown activity level %q", level))
	}
	return f, nil
}

// TDEE scales a BMR by an activity factor.
func TDEE(bmr, activityFactor float64) float64 {
	return bmr * activityFactor
}

// ProfileTDEE runs the whole chain for a member profile as of now.
func ProfileTDEE(p domain.MemberProfile, now time.Time) (float64, error) {
	if p.Birthdate == nil {
		return 0, apperrors.NewValidationError("birthdate is required").WithContext("member_id", p.ID)
	}
	bmr, err := BMR(p.WeightKg, p.HeightCm, Age(*p.Birthdate, now), p.Gender)
	if err != nil {
		return 0, err
	}
	factor, err := ActivityFactor(p.ActivityLevel)
	if err != nil {
		return 0, err
	}
	return TDEE(bmr, factor), nil
}
