package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/meal-planner/internal/interfaces"
)

// BotAPI is the part of the telegram client the handlers use
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	MemberService   interfaces.MemberServiceInterface
	MealPlanService interfaces.MealPlanServiceInterface
	SummaryService  interfaces.PlanSummaryServiceInterface
}

// Temp data keys of the profile wizard
const (
	tempWeight    = "weight"
	tempHeight    = "height"
	tempBirthdate = "birthdate"
	tempGender    = "gender"
)
