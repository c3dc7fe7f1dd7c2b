package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-planner/internal/bot/keyboards"
	"github.com/vladimiradmaev/meal-planner/internal/bot/menus"
	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	apperrors "github.com/vladimiradmaev/meal-planner/internal/errors"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
)

// planActions are the plan operations reachable from both commands and buttons
type planActions struct {
	api        BotAPI
	deps       Dependencies
	errHandler *apperrors.Handler
}

func newPlanActions(api BotAPI, deps Dependencies) planActions {
	return planActions{api: api, deps: deps, errHandler: apperrors.NewHandler(logger.GetLogger())}
}

func (a planActions) send(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := a.api.Send(msg)
	return err
}

// fail logs err and tells the user what went wrong
func (a planActions) fail(ctx context.Context, chatID int64, err error) error {
	a.errHandler.Handle(ctx, err)
	return a.send(chatID, userMessage(err), keyboards.BackToMenu())
}

func (a planActions) generatePlan(ctx context.Context, chatID int64, member *database.Member, days int) error {
	if err := a.send(chatID, "⏳ Составляю меню...", nil); err != nil {
		return err
	}

	plan, err := a.deps.MealPlanService.GenerateAndSave(ctx, member.ID, days, nil)
	if err != nil {
		return a.fail(ctx, chatID, err)
	}
	logger.Info("Plan sent", "member_id", member.ID, "plan_id", plan.ID, "meals", len(plan.Meals))

	if err := a.sendDays(chatID, plan); err != nil {
		return err
	}
	if len(plan.Skipped) > 0 {
		note := fmt.Sprintf("⚠️ Для %d приёмов пищи не нашлось подходящих блюд с учётом ваших аллергий.", len(plan.Skipped))
		if err := a.send(chatID, note, nil); err != nil {
			return err
		}
	}

	summary, err := a.deps.SummaryService.Summarize(ctx, plan)
	if err != nil {
		logger.Warn("Summary failed", "plan_id", plan.ID, "error", err)
		summary = fmt.Sprintf("✅ Меню готово: %d блюд.", len(plan.Meals))
	}
	return a.send(chatID, summary, keyboards.BackToMenu())
}

// sendDays sends one message per planned day with its replace buttons
func (a planActions) sendDays(chatID int64, plan *domain.GeneratedMealPlan) error {
	for day := 0; day < menus.PlanDays(plan); day++ {
		meals := menus.MealsOn(plan, day)
		if len(meals) == 0 {
			continue
		}
		if err := a.send(chatID, menus.FormatDay(plan, day), keyboards.ReplaceMenu(meals)); err != nil {
			return err
		}
	}
	return nil
}

// showCurrentPlan resends the latest saved plan with current replacements
func (a planActions) showCurrentPlan(ctx context.Context, chatID int64, member *database.Member) error {
	plan, err := a.deps.MealPlanService.CurrentPlan(ctx, member.ID)
	if err != nil {
		return a.fail(ctx, chatID, err)
	}
	if err := a.sendDays(chatID, plan); err != nil {
		return err
	}
	return a.send(chatID, fmt.Sprintf("📋 Меню от %s: %d блюд.", plan.StartDate.Format("02.01.2006"), len(plan.Meals)), keyboards.BackToMenu())
}

func (a planActions) replaceMeal(ctx context.Context, chatID int64, member *database.Member, mealID uint) error {
	meal, err := a.deps.MealPlanService.ReplaceMeal(ctx, mealID, member.ID)
	if err != nil {
		return a.fail(ctx, chatID, err)
	}
	return a.send(chatID, menus.FormatReplacement(meal), keyboards.BackToMenu())
}

func (a planActions) showTargets(ctx context.Context, chatID int64, member *database.Member) error {
	targets, err := a.deps.MealPlanService.Targets(ctx, member.ID)
	if err != nil {
		return a.fail(ctx, chatID, err)
	}
	return a.send(chatID, menus.FormatTargets(targets), keyboards.BackToMenu())
}

// userMessage turns a service error into a reply for the chat
func userMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrGoalNotFound):
		return "🎯 Сначала выберите цель: /profile"
	case errors.Is(err, apperrors.ErrMealNotFound):
		return "Блюдо не найдено. Проверьте номер."
	case errors.Is(err, apperrors.ErrPlanNotFound):
		return "У вас ещё нет меню. Составьте его: /plan"
	case errors.Is(err, apperrors.ErrMemberNotFound):
		return "Данные не найдены. Начните с /start"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return "⛔ Это блюдо из чужого плана."
	case apperrors.IsType(err, apperrors.ErrorTypeValidation):
		return "⚠️ Проверьте данные профиля (/profile): " + err.Error()
	case errors.Is(err, apperrors.ErrUnsatisfiable):
		return "Не нашлось другого подходящего блюда."
	case errors.Is(err, apperrors.ErrTimeout):
		return "⏱️ Не успел составить меню, попробуйте ещё раз или выберите меньше дней."
	default:
		return "Произошла ошибка. Пожалуйста, попробуйте еще раз."
	}
}
