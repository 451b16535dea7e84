package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	BotToken    string
	DatabaseURL string

	// Каналы и группы
	ReviewGroupID   int64 // группа модерации, 0 = не задана
	AcceptChannelID int64 // основной канал публикации
	SecondChannelID int64 // второй канал публикации, 0 = нет
	RejectChannelID int64 // архив отклонённых постов, 0 = нет
	LogChannelID    int64

	// Лимиты постов
	EnablePostLimit   bool
	DailyPaddingLimit int
	DailyReviewLimit  int
	DailyPostLimit    int
	RatioDivisor      int
	MaxRatio          int
	MaxPostText       int

	// Окно склейки альбомов
	GroupWindow time.Duration

	// Периодические задачи
	PostExpiredDays int // 0 = чистка отключена
	TaskInterval    time.Duration

	MetricsAddr string
}

func Load() *Config {
	return &Config{
		BotToken:    getEnv("BOT_TOKEN", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		ReviewGroupID:   getEnvInt64("REVIEW_GROUP_ID", 0),
		AcceptChannelID: getEnvInt64("ACCEPT_CHANNEL_ID", 0),
		SecondChannelID: getEnvInt64("SECOND_CHANNEL_ID", 0),
		RejectChannelID: getEnvInt64("REJECT_CHANNEL_ID", 0),
		LogChannelID:    getEnvInt64("LOG_CHANNEL_ID", 0),

		EnablePostLimit:   getEnv("ENABLE_POST_LIMIT", "true") == "true",
		DailyPaddingLimit: getEnvInt("DAILY_PADDING_LIMIT", 3),
		DailyReviewLimit:  getEnvInt("DAILY_REVIEW_LIMIT", 2),
		DailyPostLimit:    getEnvInt("DAILY_POST_LIMIT", 5),
		RatioDivisor:      getEnvInt("RATIO_DIVISOR", 10),
		MaxRatio:          getEnvInt("MAX_RATIO", 5),
		MaxPostText:       getEnvInt("MAX_POST_TEXT", 2000),

		GroupWindow: getEnvDuration("MEDIA_GROUP_WINDOW", 1500*time.Millisecond),

		PostExpiredDays: getEnvInt("POST_EXPIRED_DAYS", 3),
		TaskInterval:    getEnvDuration("TASK_INTERVAL", 24*time.Hour),

		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
