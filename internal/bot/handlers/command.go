package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-planner/internal/bot/keyboards"
	"github.com/vladimiradmaev/meal-planner/internal/bot/menus"
	"github.com/vladimiradmaev/meal-planner/internal/bot/state"
	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
)

const helpText = `Доступные команды:
/start - Показать главное меню
/plan [дни] - Составить меню (по умолчанию на 7 дней)
/myplan - Показать последнее составленное меню
/replace <номер> - Заменить блюдо из меню
/targets - Показать норму калорий и БЖУ
/profile - Заполнить профиль и выбрать цель
/allergy <продукт> - Добавить аллергию
/help - Показать это сообщение

Номер блюда указан в скобках рядом с названием, например (#12).`

// CommandHandler handles bot commands
type CommandHandler struct {
	planActions
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		planActions:  newPlanActions(api, deps),
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, member *database.Member) error {
	logger.Info("Handling command", "command", message.Command(), "member_id", member.ID)
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		h.stateManager.SetUserState(member.TelegramID, state.None)
		return menus.SendMainMenu(h.api, chatID)
	case "help":
		return h.send(chatID, helpText, nil)
	case "plan":
		days, err := ParseDays(message.CommandArguments())
		if err != nil {
			return h.send(chatID, "Укажите количество дней числом, например: /plan 5", nil)
		}
		return h.generatePlan(ctx, chatID, member, days)
	case "myplan":
		return h.showCurrentPlan(ctx, chatID, member)
	case "replace":
		mealID, err := ParseMealID(message.CommandArguments())
		if err != nil {
			return h.send(chatID, "Укажите номер блюда, например: /replace 12", nil)
		}
		return h.replaceMeal(ctx, chatID, member, mealID)
	case "targets":
		return h.showTargets(ctx, chatID, member)
	case "profile":
		return startProfile(h.planActions, h.stateManager, chatID, member)
	case "allergy":
		if allergen := message.CommandArguments(); allergen != "" {
			return addAllergy(ctx, h.planActions, chatID, member, allergen)
		}
		h.stateManager.SetUserState(member.TelegramID, state.WaitingForAllergy)
		return h.send(chatID, "Напишите продукт, на который у вас аллергия (например: арахис):", keyboards.BackToMenu())
	default:
		return h.send(chatID, "Неизвестная команда. Используйте /help для просмотра доступных команд.", nil)
	}
}
