package handlers

import (
	"context"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-planner/internal/bot/keyboards"
	"github.com/vladimiradmaev/meal-planner/internal/bot/state"
	"github.com/vladimiradmaev/meal-planner/internal/database"
)

// TextHandler handles text messages
type TextHandler struct {
	planActions
	stateManager state.StateManager
	now          func() time.Time
}

// NewTextHandler creates a new text handler
func NewTextHandler(api BotAPI, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		planActions:  newPlanActions(api, deps),
		stateManager: stateManager,
		now:          time.Now,
	}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, member *database.Member) error {
	userState := h.stateManager.GetUserState(member.TelegramID)

	switch userState {
	case state.WaitingForWeight:
		return h.handleWeight(message, member)
	case state.WaitingForHeight:
		return h.handleHeight(message, member)
	case state.WaitingForBirthdate:
		return h.handleBirthdate(message, member)
	case state.WaitingForAllergy:
		h.stateManager.SetUserState(member.TelegramID, state.None)
		return addAllergy(ctx, h.planActions, message.Chat.ID, member, message.Text)
	case state.WaitingForGender:
		return h.send(message.Chat.ID, "Выберите пол кнопкой:", keyboards.GenderMenu())
	case state.WaitingForActivity:
		return h.send(message.Chat.ID, "Выберите уровень активности кнопкой:", keyboards.ActivityMenu())
	default:
		return h.handleDefaultText(message.Chat.ID)
	}
}

func (h *TextHandler) handleWeight(message *tgbotapi.Message, member *database.Member) error {
	weight, err := ParseMeasure(message.Text, 30, 300)
	if err != nil {
		return h.send(message.Chat.ID, "Пожалуйста, введите вес числом от 30 до 300 (например: 72.5)", nil)
	}
	h.stateManager.SetTempData(member.TelegramID, tempWeight, strconv.FormatFloat(weight, 'f', -1, 64))
	h.stateManager.SetUserState(member.TelegramID, state.WaitingForHeight)
	return h.send(message.Chat.ID, "Введите рост в сантиметрах (например: 178):", nil)
}

func (h *TextHandler) handleHeight(message *tgbotapi.Message, member *database.Member) error {
	height, err := ParseMeasure(message.Text, 100, 250)
	if err != nil {
		return h.send(message.Chat.ID, "Пожалуйста, введите рост числом от 100 до 250 (например: 178)", nil)
	}
	h.stateManager.SetTempData(member.TelegramID, tempHeight, strconv.FormatFloat(height, 'f', -1, 64))
	h.stateManager.SetUserState(member.TelegramID, state.WaitingForBirthdate)
	return h.send(message.Chat.ID, "Введите дату рождения в формате ДД.ММ.ГГГГ (например: 03.04.1990):", nil)
}

func (h *TextHandler) handleBirthdate(message *tgbotapi.Message, member *database.Member) error {
	birthdate, err := ParseBirthdate(message.Text, h.now())
	if err != nil {
		return h.send(message.Chat.ID, "Неверный формат. Введите дату в формате ДД.ММ.ГГГГ (например: 03.04.1990)", nil)
	}
	h.stateManager.SetTempData(member.TelegramID, tempBirthdate, birthdate.Format("2006-01-02"))
	h.stateManager.SetUserState(member.TelegramID, state.WaitingForGender)
	return h.send(message.Chat.ID, "Укажите пол:", keyboards.GenderMenu())
}

// handleDefaultText handles text when no input is expected
func (h *TextHandler) handleDefaultText(chatID int64) error {
	return h.send(chatID, "Пожалуйста, используйте меню для выбора действия.", keyboards.MainMenu())
}
