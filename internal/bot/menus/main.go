package menus

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-planner/internal/bot/keyboards"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	"github.com/vladimiradmaev/meal-planner/internal/macros"
)

// Sender is the part of the bot API used to send messages
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

const mainMenuText = `🥗 *Планировщик питания*

Я составлю меню на несколько дней под вашу цель:
• Рассчитаю суточную норму калорий и БЖУ
• Подберу завтрак, обед, ужин и перекус
• Учту аллергии и не буду повторять блюда

Для начала заполните профиль.

Выберите действие:`

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, mainMenuText)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// FormatTargets renders daily and per-meal targets
func FormatTargets(t *macros.Targets) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 Ваша норма в день: %.0f ккал\n", t.Daily.Calories)
	fmt.Fprintf(&sb, "Белки %.0f г • Углеводы %.0f г • Жиры %.0f г\n", t.Daily.Protein, t.Daily.Carbs, t.Daily.Fat)
	fmt.Fprintf(&sb, "(расход энергии %.0f ккал)\n\n", t.TDEE)
	for _, slot := range domain.MealSlots {
		m := t.PerMeal[slot]
		fmt.Fprintf(&sb, "%s: %.0f ккал, Б %.0f / У %.0f / Ж %.0f\n", keyboards.SlotLabel(slot), m.Calories, m.Protein, m.Carbs, m.Fat)
	}
	return sb.String()
}

// FormatMeal renders one planned meal with its ingredients
func FormatMeal(m domain.PlannedMeal) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s (#%d)\n", keyboards.SlotLabel(m.Slot), m.TemplateName, m.ID)
	fmt.Fprintf(&sb, "   %.0f ккал, Б %.1f / У %.1f / Ж %.1f\n", m.Nutrition.Calories, m.Nutrition.Protein, m.Nutrition.Carbs, m.Nutrition.Fat)
	for _, ing := range m.Ingredients {
		fmt.Fprintf(&sb, "   • %s %.0f г\n", ing.FoodName, ing.Grams)
	}
	return sb.String()
}

// FormatDay renders the meals of one plan day with totals
func FormatDay(plan *domain.GeneratedMealPlan, day int) string {
	date := plan.StartDate.AddDate(0, 0, day)
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 День %d, %s\n\n", day+1, date.Format("02.01.2006"))
	for _, m := range MealsOn(plan, day) {
		sb.WriteString(FormatMeal(m))
	}
	totals := plan.Totals(date)
	fmt.Fprintf(&sb, "\nИтого: %.0f из %.0f ккал", totals.Calories, plan.DailyTargets.Calories)
	return sb.String()
}

// MealsOn returns the meals of the given plan day
func MealsOn(plan *domain.GeneratedMealPlan, day int) []domain.PlannedMeal {
	date := plan.StartDate.AddDate(0, 0, day).Format("2006-01-02")
	var out []domain.PlannedMeal
	for _, m := range plan.Meals {
		if m.Date.Format("2006-01-02") == date {
			out = append(out, m)
		}
	}
	return out
}

// PlanDays is the number of calendar days the plan spans
func PlanDays(plan *domain.GeneratedMealPlan) int {
	return int(plan.EndDate.Sub(plan.StartDate).Hours()/24) + 1
}

// FormatReplacement describes a replaced meal
func FormatReplacement(m *domain.PlannedMeal) string {
	text := "🔄 Блюдо заменено\n\n" + FormatMeal(*m)
	if m.Trace.PenaltyApplied {
		text += "\n⚠️ Точной замены не нашлось, выбрано ближайшее блюдо."
	}
	return text
}
