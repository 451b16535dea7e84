package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.DailyPaddingLimit != 3 || cfg.DailyReviewLimit != 2 || cfg.DailyPostLimit != 5 {
		t.Errorf("лимиты по умолчанию: %d/%d/%d",
			cfg.DailyPaddingLimit, cfg.DailyReviewLimit, cfg.DailyPostLimit)
	}
	if cfg.GroupWindow != 1500*time.Millisecond {
		t.Errorf("окно альбома: %v", cfg.GroupWindow)
	}
	if cfg.PostExpiredDays != 3 {
		t.Errorf("порог чистки: %d", cfg.PostExpiredDays)
	}
	if !cfg.EnablePostLimit {
		t.Error("лимиты должны быть включены по умолчанию")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REVIEW_GROUP_ID", "-100123")
	t.Setenv("ENABLE_POST_LIMIT", "false")
	t.Setenv("MEDIA_GROUP_WINDOW", "2s")
	t.Setenv("MAX_POST_TEXT", "500")

	cfg := Load()
	if cfg.ReviewGroupID != -100123 {
		t.Errorf("группа модерации: %d", cfg.ReviewGroupID)
	}
	if cfg.EnablePostLimit {
		t.Error("лимиты не выключились")
	}
	if cfg.GroupWindow != 2*time.Second {
		t.Errorf("окно альбома: %v", cfg.GroupWindow)
	}
	if cfg.MaxPostText != 500 {
		t.Errorf("лимит текста: %d", cfg.MaxPostText)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("RATIO_DIVISOR", "не число")
	t.Setenv("TASK_INTERVAL", "вчера")

	cfg := Load()
	if cfg.RatioDivisor != 10 {
		t.Errorf("делитель: %d, ожидался дефолт", cfg.RatioDivisor)
	}
	if cfg.TaskInterval != 24*time.Hour {
		t.Errorf("интервал задач: %v, ожидался дефолт", cfg.TaskInterval)
	}
}
