package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/meal-planner/internal/cache"
	"github.com/vladimiradmaev/meal-planner/internal/config"
	"github.com/vladimiradmaev/meal-planner/internal/database"
	"github.com/vladimiradmaev/meal-planner/internal/logger"
	"github.com/vladimiradmaev/meal-planner/internal/repository"
	"github.com/vladimiradmaev/meal-planner/internal/services"
)

func main() {
	path := flag.String("file", "catalog.json", "catalog JSON file with foods and templates")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Ошибка валидации конфигурации:\n%v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	f, err := os.Open(*path)
	if err != nil {
		logger.Fatal("Failed to open catalog file", "path", *path, "error", err)
	}
	defer f.Close()

	file, err := services.ParseCatalog(f)
	if err != nil {
		logger.Fatal("Invalid catalog file", "path", *path, "error", err)
	}

	db, err := database.NewPostgresDB(cfg.DB, log)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	store := repository.NewStore(db)
	ctx := context.Background()

	var invalidator services.FoodInvalidator
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unavailable, cached foods stay until their TTL", "addr", cfg.Redis.Addr(), "error", err)
		} else {
			invalidator = cache.NewFoodCatalog(store.Foods, client, cfg.Redis.FoodTTL, log)
		}
	}

	result, err := services.NewCatalogService(store, invalidator, log).Import(ctx, file)
	if err != nil {
		logger.Fatal("Import failed", "error", err)
	}
	fmt.Printf("✅ Импортировано: %d новых продуктов, %d обновлено; %d новых блюд, %d обновлено\n",
		result.FoodsCreated, result.FoodsUpdated, result.TemplatesCreated, result.TemplatesUpdated)
}
