package keyboards

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
)

// Callback data
const (
	MainMenuData    = "main_menu"
	Plan3Data       = "plan_3"
	Plan7Data       = "plan_7"
	CurrentPlanData = "current_plan"
	TargetsData     = "targets"
	ProfileData     = "profile"
	AllergyData     = "allergy"
	GenderPrefix    = "gender_"
	ActivityPrefix  = "activity_"
	GoalPrefix      = "goal_"
	ReplacePrefix   = "replace_"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓️ План на 7 дней", Plan7Data),
			tgbotapi.NewInlineKeyboardButtonData("📅 План на 3 дня", Plan3Data),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Моё меню", CurrentPlanData),
			tgbotapi.NewInlineKeyboardButtonData("🎯 Мои нормы", TargetsData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Профиль", ProfileData),
			tgbotapi.NewInlineKeyboardButtonData("🚫 Аллергии", AllergyData),
		),
	)
}

// BackToMenu has a single button returning to the main menu
func BackToMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", MainMenuData),
		),
	)
}

func GenderMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👨 Мужской", GenderPrefix+string(domain.GenderMale)),
			tgbotapi.NewInlineKeyboardButtonData("👩 Женский", GenderPrefix+string(domain.GenderFemale)),
		),
	)
}

// ActivityMenu lists the activity levels, one per row
func ActivityMenu() tgbotapi.InlineKeyboardMarkup {
	levels := []struct {
		level domain.ActivityLevel
		label string
	}{
		{domain.ActivitySedentary, "🪑 Сидячий образ жизни"},
		{domain.ActivityLight, "🚶 Лёгкая активность"},
		{domain.ActivityModerate, "🏃 Умеренная активность"},
		{domain.ActivityActive, "🏋️ Высокая активность"},
		{domain.ActivityVeryActive, "🔥 Очень высокая активность"},
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range levels {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(l.label, ActivityPrefix+string(l.level)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func GoalMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📉 Похудеть", GoalPrefix+string(domain.GoalLoseWeight)),
			tgbotapi.NewInlineKeyboardButtonData("💪 Набрать массу", GoalPrefix+string(domain.GoalGainMuscle)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚖️ Поддерживать вес", GoalPrefix+string(domain.GoalMaintain)),
			tgbotapi.NewInlineKeyboardButtonData("🥗 Здоровье", GoalPrefix+string(domain.GoalImproveHealth)),
		),
	)
}

// ReplaceMenu offers a replace button for each meal of one day
func ReplaceMenu(meals []domain.PlannedMeal) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range meals {
		label := fmt.Sprintf("🔄 %s: %s", SlotLabel(m.Slot), m.TemplateName)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", ReplacePrefix, m.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", MainMenuData),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SlotLabel is the Russian name of a meal slot
func SlotLabel(slot domain.MealSlot) string {
	switch slot {
	case domain.SlotBreakfast:
		return "Завтрак"
	case domain.SlotLunch:
		return "Обед"
	case domain.SlotDinner:
		return "Ужин"
	case domain.SlotSnack:
		return "Перекус"
	default:
		return string(slot)
	}
}
