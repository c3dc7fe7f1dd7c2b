package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"google.golang.org/api/option"
)

const summaryModel = "gemini-1.5-flash"

// PlanSummaryService writes a short human summary of a finished plan.
// Without an API key, or when the model fails, it falls back to FallbackSummary.
type PlanSummaryService struct {
	geminiClient *genai.Client
	logger       *slog.Logger
}

func NewPlanSummaryService(ctx context.Context, geminiAPIKey string, log *slog.Logger) (*PlanSummaryService, error) {
	s := &PlanSummaryService{logger: logger.OrDefault(log)}
	if geminiAPIKey == "" {
		return s, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(geminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	s.geminiClient = client
	return s, nil
}

func (s *PlanSummaryService) Close() error {
	if s.geminiClient == nil {
		return nil
	}
	return s.geminiClient.Close()
}

func (s *PlanSummaryService) Summarize(ctx context.Context, plan *domain.GeneratedMealPlan) (string, error) {
	fallback := FallbackSummary(plan)
	if s.geminiClient == nil {
		return fallback, nil
	}

	model := s.geminiClient.GenerativeModel(summaryModel)
	model.SetTemperature(0.3)

	resp, err := model.GenerateContent(ctx, genai.Text(summaryPrompt(plan)))
	if err != nil {
		s.logger.Warn("Plan summary generation failed, using fallback", "run_id", plan.RunID, "error", err)
		return fallback, nil
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return fallback, nil
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if summary := strings.TrimSpace(sb.String()); summary != "" {
		return summary, nil
	}
	return fallback, nil
}

func summaryPrompt(plan *domain.GeneratedMealPlan) string {
	var meals strings.Builder
	for _, m := range plan.Meals {
		fmt.Fprintf(&meals, "- %s %s: %s (%.0f kcal)\n", m.Date.Format("2006-01-02"), m.Slot, m.TemplateName, m.Nutrition.Calories)
	}

	return fmt.Sprintf(`You are a friendly nutritionist. Summarize this meal plan for the user.

REQUIREMENTS:
- Reply in Russian
- One short paragraph, no more than 4 sentences
- Mention the goal and the daily calorie target
- Do not invent meals that are not listed
- Plain text, no markdown

Goal: %s
Daily target: %.0f kcal, protein %.0f g, carbs %.0f g, fat %.0f g
Meals:
%s`, plan.Goal, plan.DailyTargets.Calories, plan.DailyTargets.Protein, plan.DailyTargets.Carbs, plan.DailyTargets.Fat, meals.String())
}

// FallbackSummary describes the plan without calling a model
func FallbackSummary(plan *domain.GeneratedMealPlan) string {
	days := make(map[string]struct{})
	var calories float64
	for _, m := range plan.Meals {
		days[m.Date.Format("2006-01-02")] = struct{}{}
		calories += m.Nutrition.Calories
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "План с %s по %s: %d блюд.",
		plan.StartDate.Format("02.01"), plan.EndDate.Format("02.01"), len(plan.Meals))
	if len(days) > 0 {
		fmt.Fprintf(&sb, " В среднем %.0f ккал в день при цели %.0f ккал.",
			calories/float64(len(days)), plan.DailyTargets.Calories)
	}
	if len(plan.Skipped) > 0 {
		fmt.Fprintf(&sb, " Пропущено приёмов пищи: %d.", len(plan.Skipped))
	}
	if plan.Interrupted {
		sb.WriteString(" Генерация была прервана.")
	}
	return sb.String()
}
