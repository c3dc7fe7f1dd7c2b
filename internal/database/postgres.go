package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vladimiradmaev/meal-planner/internal/config"
	"github.com/vladimiradmaev/meal-planner/internal/database/migrations"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Member struct {
	gorm.Model
	TelegramID    int64 `gorm:"uniqueIndex"`
	Username      string
	FirstName     string
	LastName      string
	WeightKg      float64
	HeightCm      float64
	Birthdate     *time.Time
	Gender        string
	ActivityLevel string
	Goals         []HealthGoal
	Allergies     []MemberAllergy
}

type HealthGoal struct {
	gorm.Model
	MemberID     uint `gorm:"index"`
	Type         string
	CarbRatio    *float64
	ProteinRatio *float64
	FatRatio     *float64
	Active       bool
}

type MemberAllergy struct {
	gorm.Model
	MemberID uint   `gorm:"index"`
	Allergen string `gorm:"not null"`
}

type Food struct {
	gorm.Model
	Name     string `gorm:"uniqueIndex"`
	Aliases  datatypes.JSONSlice[string]
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    *float64
	Sugar    *float64
	Sodium   *float64
	VitaminA *float64
	VitaminC *float64
	Calcium  *float64
	Iron     *float64
}

type MealTemplate struct {
	gorm.Model
	Name          string
	Slot          string `gorm:"index"`
	Ingredients   []MealTemplateIngredient
	SuitableGoals datatypes.JSONSlice[string]
	Tags          datatypes.JSONSlice[string]
}

type MealTemplateIngredient struct {
	ID             uint `gorm:"primaryKey"`
	MealTemplateID uint `gorm:"index"`
	FoodID         uint
	Food           Food
	Grams          float64
	Position       int
}

type MealPlan struct {
	gorm.Model
	RunID        string `gorm:"uniqueIndex"`
	MemberID     uint   `gorm:"index"`
	StartDate    time.Time
	EndDate      time.Time
	Goal         string
	Ratios       datatypes.JSONType[domain.MacroRatios]
	DailyTargets datatypes.JSONType[domain.MacroTargets]
	MealTargets  datatypes.JSONType[domain.SlotTargets]
	Skipped      datatypes.JSONSlice[domain.SlotRef]
	Meals        []PlannedMeal `gorm:"constraint:OnDelete:CASCADE"`
}

type PlannedMeal struct {
	gorm.Model
	MealPlanID   uint `gorm:"index"`
	Date         time.Time
	Slot         string
	TemplateID   uint
	TemplateName string
	Calories     float64
	Nutrition    datatypes.JSONType[domain.Nutrients]
	Trace        datatypes.JSONType[domain.SelectionTrace]
	Ingredients  []PlannedMealIngredient `gorm:"constraint:OnDelete:CASCADE"`
}

type PlannedMealIngredient struct {
	ID            uint `gorm:"primaryKey"`
	PlannedMealID uint `gorm:"index"`
	FoodID        uint
	FoodName      string
	Grams         float64
	Nutrients     datatypes.JSONType[domain.Nutrients]
}

// Models lists every table, in dependency order
func Models() []interface{} {
	return []interface{}{
		&Member{}, &HealthGoal{}, &MemberAllergy{},
		&Food{}, &MealTemplate{}, &MealTemplateIngredient{},
		&MealPlan{}, &PlannedMeal{}, &PlannedMealIngredient{},
	}
}

// Migrate creates the schema and then applies the embedded SQL migrations
func Migrate(db *gorm.DB, log *slog.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	m, err := migrations.Default(log)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := m.Run(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func NewPostgresDB(cfg config.DBConfig, log *slog.Logger) (*gorm.DB, error) {
	log = logger.OrDefault(log)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db, log); err != nil {
		return nil, err
	}

	log.Info("Database connection established and migrations completed",
		"host", cfg.Host,
		"database", cfg.DBName)
	return db, nil
}
