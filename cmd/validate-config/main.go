package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/meal-planner/internal/config"
)

func main() {
	fmt.Println("🔍 Проверка конфигурации...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env файл не найден: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Ошибка валидации конфигурации:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Конфигурация валидна!")
	fmt.Printf("📋 Детали конфигурации:\n")
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - Gemini API Key: %s\n", maskToken(cfg.GeminiAPIKey))
	fmt.Printf("  - DB: %s@%s:%s/%s\n", cfg.DB.User, cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName)
	if cfg.Redis.Enabled() {
		fmt.Printf("  - Redis: %s (db %d, password %s, food TTL %s)\n",
			cfg.Redis.Addr(), cfg.Redis.DB, maskToken(cfg.Redis.Password), cfg.Redis.FoodTTL)
	} else {
		fmt.Println("  - Redis: отключен")
	}
	fmt.Printf("  - Plan days: %d (max %d)\n", cfg.Planner.DefaultDays, cfg.Planner.MaxDays)
	fmt.Printf("  - Repeat fallback: %t\n", cfg.Planner.AllowRepeatFallback)
	fmt.Printf("  - Generation timeout: %s\n", cfg.Planner.GenerationTimeout)
	fmt.Printf("  - Log: %s, %s, %s\n", cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.OutputPath)

	if cfg.TelegramToken == "" {
		fmt.Println("❌ TELEGRAM_BOT_TOKEN не установлен")
		os.Exit(1)
	}
}

func maskToken(token string) string {
	if token == "" {
		return "<не установлен>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
