// Package tglog дублирует важные события в служебный Telegram-канал.
package tglog

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-telegram/bot"
)

var (
	b         *bot.Bot
	channelID int64
)

// Init настраивает отправку в канал. channelID == 0 отключает её,
// события остаются только в обычном логе.
func Init(botAPI *bot.Bot, logChannelID int64) {
	b = botAPI
	channelID = logChannelID
}

// Send пишет событие в лог и асинхронно отправляет его в канал.
func Send(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	log.Print(text)

	if b == nil || channelID == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:              channelID,
			Text:                text,
			DisableNotification: true,
		})
		if err != nil {
			log.Printf("tglog: ошибка отправки в канал: %v", err)
		}
	}()
}
