package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vladimiradmaev/meal-planner/internal/domain"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
)

func TestFallbackSummary(t *testing.T) {
	day1 := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	plan := &domain.GeneratedMealPlan{
		StartDate:    day1,
		EndDate:      day2,
		DailyTargets: domain.MacroTargets{Calories: 2000},
		Meals: []domain.PlannedMeal{
			{Date: day1, Nutrition: domain.Nutrients{Calories: 1000}},
			{Date: day1, Nutrition: domain.Nutrients{Calories: 900}},
			{Date: day2, Nutrition: domain.Nutrients{Calories: 2100}},
		},
		Skipped: []domain.SlotRef{{Date: day2, Slot: domain.SlotSnack}},
	}

	got := FallbackSummary(plan)
	for _, want := range []string{"15.06", "16.06", "3 блюд", "2000 ккал в день", "цели 2000", "Пропущено приёмов пищи: 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected summary to contain %q, got %q", want, got)
		}
	}
	if strings.Contains(got, "прервана") {
		t.Errorf("Expected no interruption note, got %q", got)
	}
}

func TestSummarizeWithoutKey(t *testing.T) {
	s, err := NewPlanSummaryService(context.Background(), "", logger.Discard())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer s.Close()

	plan := &domain.GeneratedMealPlan{Interrupted: true}
	got, err := s.Summarize(context.Background(), plan)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != FallbackSummary(plan) {
		t.Errorf("Expected fallback summary, got %q", got)
	}
}
