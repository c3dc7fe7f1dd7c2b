package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/meal-planner/internal/bot/keyboards"
	"github.com/vladimiradmaev/meal-planner/internal/bot/state"
	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
)

func startProfile(a planActions, sm state.StateManager, chatID int64, member *database.Member) error {
	sm.ClearTempData(member.TelegramID)
	sm.SetUserState(member.TelegramID, state.WaitingForWeight)
	return a.send(chatID, "👤 Заполним профиль.\n\nВведите ваш вес в килограммах (например: 72.5):", keyboards.BackToMenu())
}

// saveProfile stores the wizard answers once the activity level is known
func saveProfile(ctx context.Context, a planActions, sm state.StateManager, chatID int64, member *database.Member, activity domain.ActivityLevel) error {
	userID := member.TelegramID
	weightRaw, _ := sm.GetTempData(userID, tempWeight)
	heightRaw, _ := sm.GetTempData(userID, tempHeight)
	birthRaw, _ := sm.GetTempData(userID, tempBirthdate)
	gender, _ := sm.GetTempData(userID, tempGender)

	weight, errW := strconv.ParseFloat(weightRaw, 64)
	height, errH := strconv.ParseFloat(heightRaw, 64)
	birthdate, errB := time.Parse("2006-01-02", birthRaw)
	if errW != nil || errH != nil || errB != nil || gender == "" {
		logger.Warn("Profile wizard data incomplete", "telegram_id", userID)
		return startProfile(a, sm, chatID, member)
	}

	profile := domain.MemberProfile{
		ID:            member.ID,
		WeightKg:      weight,
		HeightCm:      height,
		Birthdate:     &birthdate,
		Gender:        domain.Gender(gender),
		ActivityLevel: activity,
	}
	if err := a.deps.MemberService.UpdateProfile(ctx, profile); err != nil {
		sm.SetUserState(userID, state.None)
		return a.fail(ctx, chatID, err)
	}

	sm.ClearTempData(userID)
	sm.SetUserState(userID, state.None)
	return a.send(chatID, "✅ Профиль сохранен.\n\nТеперь выберите цель:", keyboards.GoalMenu())
}

func addAllergy(ctx context.Context, a planActions, chatID int64, member *database.Member, allergen string) error {
	if err := a.deps.MemberService.AddAllergy(ctx, member.ID, allergen); err != nil {
		return a.fail(ctx, chatID, err)
	}
	allergies, err := a.deps.MemberService.ListAllergies(ctx, member.ID)
	if err != nil {
		return a.fail(ctx, chatID, err)
	}
	text := "✅ Аллергия добавлена.\n\nБлюда с этими продуктами не попадут в меню:\n• " + strings.Join(allergies, "\n• ")
	return a.send(chatID, text, keyboards.BackToMenu())
}
