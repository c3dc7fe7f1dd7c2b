package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-planner/internal/bot/keyboards"
	"github.com/vladimiradmaev/meal-planner/internal/bot/menus"
	"github.com/vladimiradmaev/meal-planner/internal/bot/state"
	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	planActions
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		planActions:  newPlanActions(api, deps),
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, member *database.Member) error {
	// Answer the callback query first
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := h.api.Request(callback); err != nil {
		logger.Warn("Failed to answer callback query", "error", err)
	}
	if query.Message == nil || query.Message.Chat == nil {
		return nil
	}
	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case data == keyboards.MainMenuData:
		h.stateManager.SetUserState(member.TelegramID, state.None)
		return menus.SendMainMenu(h.api, chatID)
	case data == keyboards.Plan3Data:
		return h.generatePlan(ctx, chatID, member, 3)
	case data == keyboards.Plan7Data:
		return h.generatePlan(ctx, chatID, member, 7)
	case data == keyboards.CurrentPlanData:
		return h.showCurrentPlan(ctx, chatID, member)
	case data == keyboards.TargetsData:
		return h.showTargets(ctx, chatID, member)
	case data == keyboards.ProfileData:
		return startProfile(h.planActions, h.stateManager, chatID, member)
	case data == keyboards.AllergyData:
		h.stateManager.SetUserState(member.TelegramID, state.WaitingForAllergy)
		return h.send(chatID, "Напишите продукт, на который у вас аллергия (например: арахис):", keyboards.BackToMenu())
	case strings.HasPrefix(data, keyboards.ReplacePrefix):
		mealID, err := ParseMealID(strings.TrimPrefix(data, keyboards.ReplacePrefix))
		if err != nil {
			return h.handleUnknownCallback(chatID)
		}
		return h.replaceMeal(ctx, chatID, member, mealID)
	case strings.HasPrefix(data, keyboards.GenderPrefix):
		return h.handleGender(chatID, member, strings.TrimPrefix(data, keyboards.GenderPrefix))
	case strings.HasPrefix(data, keyboards.ActivityPrefix):
		return h.handleActivity(ctx, chatID, member, domain.ActivityLevel(strings.TrimPrefix(data, keyboards.ActivityPrefix)))
	case strings.HasPrefix(data, keyboards.GoalPrefix):
		return h.handleGoal(ctx, chatID, member, domain.GoalType(strings.TrimPrefix(data, keyboards.GoalPrefix)))
	default:
		return h.handleUnknownCallback(chatID)
	}
}

func (h *CallbackHandler) handleGender(chatID int64, member *database.Member, gender string) error {
	if h.stateManager.GetUserState(member.TelegramID) != state.WaitingForGender {
		return startProfile(h.planActions, h.stateManager, chatID, member)
	}
	h.stateManager.SetTempData(member.TelegramID, tempGender, gender)
	h.stateManager.SetUserState(member.TelegramID, state.WaitingForActivity)
	return h.send(chatID, "Выберите уровень физической активности:", keyboards.ActivityMenu())
}

func (h *CallbackHandler) handleActivity(ctx context.Context, chatID int64, member *database.Member, activity domain.ActivityLevel) error {
	if h.stateManager.GetUserState(member.TelegramID) != state.WaitingForActivity {
		return startProfile(h.planActions, h.stateManager, chatID, member)
	}
	return saveProfile(ctx, h.planActions, h.stateManager, chatID, member, activity)
}

func (h *CallbackHandler) handleGoal(ctx context.Context, chatID int64, member *database.Member, goal domain.GoalType) error {
	if _, err := h.deps.MemberService.SetGoal(ctx, member.ID, goal, nil); err != nil {
		return h.fail(ctx, chatID, err)
	}
	targets, err := h.deps.MealPlanService.Targets(ctx, member.ID)
	if err != nil {
		return h.fail(ctx, chatID, err)
	}
	return h.send(chatID, "✅ Цель сохранена.\n\n"+menus.FormatTargets(targets), keyboards.MainMenu())
}

// handleUnknownCallback handles unknown callbacks
func (h *CallbackHandler) handleUnknownCallback(chatID int64) error {
	return h.send(chatID, "Неизвестная команда", nil)
}
