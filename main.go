package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"go_submit_bot/channels"
	"go_submit_bot/config"
	"go_submit_bot/database"
	"go_submit_bot/handlers"
	"go_submit_bot/metrics"
	"go_submit_bot/posts"
	"go_submit_bot/tglog"
	"go_submit_bot/web"
)

func main() {
	// .env удобен в разработке, в проде переменные приходят из окружения
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используются переменные окружения")
	}

	cfg := config.Load()
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN не задан")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL не задан")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе: %v", err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)

	resolver := channels.NewResolver(db)

	// обработчик сообщений появляется после создания бота, поэтому
	// дефолтный хендлер замыкается на переменную
	var h *handlers.Handler
	opts := []bot.Option{
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h != nil {
				h.OnMessage(ctx, b, update)
			}
		}),
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		log.Fatalf("Ошибка создания бота: %v", err)
	}

	tglog.Init(b, cfg.LogChannelID)

	svc := posts.NewService(b, db, cfg, resolver, collector)
	h = handlers.New(svc, db, cfg)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "post", bot.MatchTypePrefix, h.OnPostCallback)
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "review", bot.MatchTypePrefix, h.OnReviewCallback)

	// периодические задачи: чистка зависших постов и плановая публикация
	go runTasks(ctx, svc, cfg.TaskInterval)

	srv := web.NewServer(cfg.MetricsAddr, db, reg)
	go func() {
		log.Printf("HTTP-сервер на %s", cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP-сервер: %v", err)
		}
	}()
	defer func() {
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = srv.Shutdown(shCtx)
	}()

	tglog.Send("Бот запущен")
	log.Println("Бот запущен")
	b.Start(ctx)
}

func runTasks(ctx context.Context, svc *posts.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.CleanExpiredPosts(ctx); err != nil {
				log.Printf("Чистка зависших постов: %v", err)
			}
			if err := svc.PublishPlannedPost(ctx); err != nil {
				log.Printf("Плановая публикация: %v", err)
			}
		}
	}
}
