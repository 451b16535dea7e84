// Package handlers — маршрутизация обновлений Telegram.
package handlers

import (
	"context"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"go_submit_bot/config"
	"go_submit_bot/database"
	"go_submit_bot/messages"
	"go_submit_bot/posts"
)

// UserStore — часть хранилища для учёта пользователей.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, id int64, username, firstName, lastName string) (*database.User, error)
	SetUserAnonymous(ctx context.Context, uid int64, v bool) error
	SetUserNotification(ctx context.Context, uid int64, v bool) error
}

type Handler struct {
	svc   *posts.Service
	store UserStore
	cfg   *config.Config
}

func New(svc *posts.Service, store UserStore, cfg *config.Config) *Handler {
	return &Handler{svc: svc, store: store, cfg: cfg}
}

func (h *Handler) resolveUser(ctx context.Context, from *models.User) (*database.User, error) {
	if from == nil {
		return nil, nil
	}
	return h.store.GetOrCreateUser(ctx, from.ID, from.Username, from.FirstName, from.LastName)
}

// OnMessage — входящие сообщения. Посты принимаются только в личном чате.
func (h *Handler) OnMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Chat.Type != models.ChatTypePrivate {
		return
	}

	user, err := h.resolveUser(ctx, msg.From)
	if err != nil || user == nil {
		log.Printf("handlers: не удалось получить пользователя: %v", err)
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		h.onCommand(ctx, b, user, msg)
		return
	}

	if user.IsBan {
		h.send(ctx, b, msg.Chat.ID, messages.MsgBanned)
		return
	}
	if !user.Rights.Has(database.RightSendPost) {
		h.send(ctx, b, msg.Chat.ID, messages.MsgNoRight)
		return
	}
	if h.cfg.ReviewGroupID == 0 && !user.Rights.Has(database.RightDirectPost) {
		h.send(ctx, b, msg.Chat.ID, messages.MsgReviewGroupNotSet)
		return
	}

	switch {
	case msg.MediaGroupID != "":
		err = h.svc.HandleMediaGroupPost(ctx, user, msg)
	case msg.Text != "":
		err = h.svc.HandleTextPost(ctx, user, msg)
	default:
		err = h.svc.HandleMediaPost(ctx, user, msg)
	}
	if err != nil {
		log.Printf("handlers: ошибка приёма поста от %d: %v", user.UserID, err)
		h.send(ctx, b, msg.Chat.ID, messages.MsgSendError)
	}
}

func (h *Handler) onCommand(ctx context.Context, b *bot.Bot, user *database.User, msg *models.Message) {
	cmd, _, _ := strings.Cut(msg.Text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")

	switch cmd {
	case "/start":
		h.send(ctx, b, msg.Chat.ID, messages.MsgWelcome)
	case "/anonymous":
		v := !user.PreferAnonymous
		if err := h.store.SetUserAnonymous(ctx, user.UserID, v); err != nil {
			log.Printf("handlers: /anonymous: %v", err)
			return
		}
		h.send(ctx, b, msg.Chat.ID, messages.FormatToggle("Анонимность по умолчанию", v))
	case "/notification":
		v := !user.Notification
		if err := h.store.SetUserNotification(ctx, user.UserID, v); err != nil {
			log.Printf("handlers: /notification: %v", err)
			return
		}
		h.send(ctx, b, msg.Chat.ID, messages.FormatToggle("Уведомления", v))
	case "/myinfo":
		h.send(ctx, b, msg.Chat.ID, messages.FormatMyInfo(user))
	default:
		h.send(ctx, b, msg.Chat.ID, messages.MsgWelcome)
	}
}

// OnPostCallback — кнопки автора под черновиком ("post ...").
func (h *Handler) OnPostCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}
	user, err := h.resolveUser(ctx, &query.From)
	if err != nil || user == nil {
		log.Printf("handlers: не удалось получить пользователя: %v", err)
		return
	}

	action := strings.TrimPrefix(query.Data, "post ")
	switch action {
	case "anonymous":
		err = h.svc.ToggleAnonymous(ctx, user, query)
	case "cancel":
		err = h.svc.CancelPost(ctx, user, query)
	case "confirm":
		err = h.svc.ConfirmPost(ctx, user, query)
	}
	if err != nil {
		log.Printf("handlers: callback %q от %d: %v", query.Data, user.UserID, err)
	}
}

// OnReviewCallback — кнопки модерации ("review ..."). Доступны модераторам,
// а для прямых постов — самому автору.
func (h *Handler) OnReviewCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	query := update.CallbackQuery
	if query == nil {
		return
	}
	user, err := h.resolveUser(ctx, &query.From)
	if err != nil || user == nil {
		log.Printf("handlers: не удалось получить пользователя: %v", err)
		return
	}

	if !h.allowReview(ctx, user, query) {
		_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: query.ID,
			Text:            messages.MsgNoReviewRight,
			ShowAlert:       true,
		})
		return
	}

	action := strings.TrimPrefix(query.Data, "review ")
	verb, payload, _ := strings.Cut(action, ":")
	switch verb {
	case "tag":
		err = h.svc.SetPostTag(ctx, query, payload)
	case "spoiler":
		err = h.svc.ToggleSpoiler(ctx, query)
	case "approve":
		err = h.svc.AcceptPost(ctx, user, query, payload == "second")
	case "plan":
		err = h.svc.PlanPost(ctx, user, query)
	case "reject":
		if payload == "" {
			err = h.svc.ShowRejectKeyboard(ctx, query)
		} else {
			err = h.svc.RejectPost(ctx, user, query, payload)
		}
	case "back":
		err = h.svc.BackToReview(ctx, query)
	}
	if err != nil {
		log.Printf("handlers: callback %q от %d: %v", query.Data, user.UserID, err)
	}
}

func (h *Handler) allowReview(ctx context.Context, user *database.User, query *models.CallbackQuery) bool {
	if user.Rights.Has(database.RightReviewPost) {
		return true
	}
	if !user.Rights.Has(database.RightDirectPost) {
		return false
	}
	msg := query.Message.Message
	if msg == nil {
		return false
	}
	post, err := h.svc.FetchPostFromMessage(ctx, msg)
	if err != nil || post == nil {
		return false
	}
	return post.IsDirectPost() && post.PosterUID == user.UserID
}

func (h *Handler) send(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		log.Printf("handlers: ошибка отправки: %v", err)
	}
}
