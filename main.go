package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/meal-planner/internal/bot"
	"github.com/vladimiradmaev/meal-planner/internal/bot/handlers"
	"github.com/vladimiradmaev/meal-planner/internal/bot/state"
	"github.com/vladimiradmaev/meal-planner/internal/cache"
	"github.com/vladimiradmaev/meal-planner/internal/config"
	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/domain"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"github.com/vladimiradmaev/meal-planner/internal/matcher"
	"github.com/vladimiradmaev/meal-planner/internal/nutrition"
	"github.com/vladimiradmaev/meal-planner/internal/repository"
	"github.com/vladimiradmaev/meal-planner/internal/services"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	log := logger.GetLogger()
	log.Info("Starting Meal Planner Bot...")
	if envErr != nil {
		log.Warn(".env file not found")
	}
	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.DB, log)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	store := repository.NewStore(db)

	var foods domain.FoodCatalog = store.Foods
	var stateManager state.StateManager = state.NewManager()
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unavailable, continuing without cache", "addr", cfg.Redis.Addr(), "error", err)
		} else {
			foods = cache.NewFoodCatalog(store.Foods, client, cfg.Redis.FoodTTL, log)
			stateManager = state.NewRedisManager(client, log)
			log.Info("Redis connected", "addr", cfg.Redis.Addr())
		}
	}

	// Initialize services
	m := matcher.New(store.Templates, nutrition.NewAggregator(foods), cfg.Planner.AllowRepeatFallback, log)
	memberService := services.NewMemberService(store.Members, log)
	mealPlanService := services.NewMealPlanService(store.Members, store.Members, m, store.Plans, cfg.Planner, log)
	summaryService, err := services.NewPlanSummaryService(ctx, cfg.GeminiAPIKey, log)
	if err != nil {
		logger.Fatal("Failed to create summary service", "error", err)
	}
	defer summaryService.Close()
	log.Info("Services initialized successfully")

	telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
		MemberService:   memberService,
		MealPlanService: mealPlanService,
		SummaryService:  summaryService,
	}, stateManager)
	if err != nil {
		logger.Fatal("Failed to create bot", "error", err)
	}

	log.Info("Bot is running. Press Ctrl+C to stop.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("Bot stopped")
}
