package posts

import (
	"context"
	"log"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"go_submit_bot/database"
	"go_submit_bot/markup"
	"go_submit_bot/messages"
	"go_submit_bot/tags"
)

// fetchForQuery достаёт пост для callback-кнопки; при отсутствии сам
// отвечает на запрос.
func (s *Service) fetchForQuery(ctx context.Context, query *models.CallbackQuery) (*database.Post, error) {
	msg := query.Message.Message
	if msg == nil {
		s.answer(ctx, query, messages.MsgPostNotFound, true)
		return nil, nil
	}
	post, err := s.FetchPostFromMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	if post == nil {
		// кнопки без поста в базе бесполезны, убираем
		s.clearKeyboard(ctx, msg.Chat.ID, msg.ID)
		s.answer(ctx, query, messages.MsgPostNotFound, true)
		return nil, nil
	}
	return post, nil
}

// requireStatus проверяет, что пост ещё в ожидаемом статусе.
func (s *Service) requireStatus(ctx context.Context, query *models.CallbackQuery, post *database.Post, want database.PostStatus) bool {
	if post.Status == want {
		return true
	}
	s.answer(ctx, query, messages.MsgAlreadyProcessed, true)
	return false
}

// ============================================
// Действия автора (кнопки "post ...")
// ============================================

// ToggleAnonymous переключает анонимность неподтверждённого поста.
func (s *Service) ToggleAnonymous(ctx context.Context, user *database.User, query *models.CallbackQuery) error {
	post, err := s.fetchForQuery(ctx, query)
	if err != nil || post == nil {
		return err
	}
	if post.PosterUID != user.UserID {
		s.answer(ctx, query, messages.MsgNotYourPost, true)
		return nil
	}
	if !s.requireStatus(ctx, query, post, database.StatusPadding) {
		return nil
	}

	post.Anonymous = !post.Anonymous
	if err := s.store.UpdatePostAnonymous(ctx, post.ID, post.Anonymous); err != nil {
		return err
	}
	_, _ = s.tg.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      post.OriginActionChatID,
		MessageID:   post.OriginActionMsgID,
		ReplyMarkup: markup.PostKeyboard(post.Anonymous),
	})
	s.answer(ctx, query, messages.FormatToggle("Анонимность", post.Anonymous), false)
	return nil
}

// CancelPost отменяет неподтверждённый пост.
func (s *Service) CancelPost(ctx context.Context, user *database.User, query *models.CallbackQuery) error {
	post, err := s.fetchForQuery(ctx, query)
	if err != nil || post == nil {
		return err
	}
	if post.PosterUID != user.UserID {
		s.answer(ctx, query, messages.MsgNotYourPost, true)
		return nil
	}
	if !s.requireStatus(ctx, query, post, database.StatusPadding) {
		return nil
	}

	if err := s.store.UpdatePostStatus(ctx, post.ID, database.StatusCancel); err != nil {
		return err
	}
	_, _ = s.tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    post.OriginActionChatID,
		MessageID: post.OriginActionMsgID,
		Text:      messages.MsgPostCanceled,
	})
	s.answer(ctx, query, messages.MsgPostCanceled, false)
	return nil
}

// ConfirmPost отправляет подтверждённый пост в группу модерации.
func (s *Service) ConfirmPost(ctx context.Context, user *database.User, query *models.CallbackQuery) error {
	post, err := s.fetchForQuery(ctx, query)
	if err != nil || post == nil {
		return err
	}
	if post.PosterUID != user.UserID {
		s.answer(ctx, query, messages.MsgNotYourPost, true)
		return nil
	}
	if !s.requireStatus(ctx, query, post, database.StatusPadding) {
		return nil
	}

	if user.IsBan {
		return s.rejectBanned(ctx, user, query, post)
	}
	if s.cfg.ReviewGroupID == 0 {
		s.answer(ctx, query, messages.MsgReviewGroupNotSet, true)
		return nil
	}

	// очередь модерации и квота проверяются ещё раз на подтверждении:
	// между черновиком и кнопкой могли пройти сутки
	denial, err := s.limitDenial(ctx, user, true)
	if err != nil {
		return err
	}
	if denial != "" {
		s.answer(ctx, query, denial, true)
		return nil
	}

	reviewMsgID, reviewGroupID, err := s.copyToReviewGroup(ctx, post, user)
	if err != nil {
		s.metrics.SendError()
		s.answer(ctx, query, messages.MsgSendError, true)
		return err
	}

	kb := markup.ReviewKeyboard(post.Tags, spoilerPtr(post), s.cfg.SecondChannelID != 0)
	action, err := s.tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    s.cfg.ReviewGroupID,
		Text:      messages.MakeReviewMessage(user, nil, post.Anonymous, "", ""),
		ParseMode: models.ParseModeHTML,
		ReplyParameters: &models.ReplyParameters{
			MessageID:                reviewMsgID,
			AllowSendingWithoutReply: true,
		},
		ReplyMarkup:        kb,
		LinkPreviewOptions: noPreview,
	})
	if err != nil {
		s.metrics.SendError()
		return err
	}

	err = s.store.UpdatePostReviewInfo(ctx, post.ID,
		s.cfg.ReviewGroupID, reviewMsgID,
		s.cfg.ReviewGroupID, action.ID,
		reviewGroupID, database.StatusReviewing)
	if err != nil {
		return err
	}
	// отправленным пост считается с момента подтверждения
	if err := s.store.IncUserPostCount(ctx, user.UserID); err != nil {
		return err
	}

	_, _ = s.tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    post.OriginActionChatID,
		MessageID: post.OriginActionMsgID,
		Text:      messages.MsgThanks,
	})
	s.answer(ctx, query, messages.MsgThanks, false)
	s.metrics.PostConfirmed()
	return nil
}

// rejectBanned — принудительный отказ подтверждённому посту заблокированного
// автора, без зачёта в квоту и без уведомления.
func (s *Service) rejectBanned(ctx context.Context, user *database.User, query *models.CallbackQuery, post *database.Post) error {
	err := s.store.UpdatePostRejected(ctx, post.ID, bannedReason, false, 0, database.StatusRejected)
	if err != nil {
		return err
	}
	_, _ = s.tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    post.OriginActionChatID,
		MessageID: post.OriginActionMsgID,
		Text:      messages.MsgBanned,
	})
	s.answer(ctx, query, messages.MsgBanned, true)
	s.metrics.PostRejected()
	return nil
}

// copyToReviewGroup доставляет содержимое поста в группу модерации.
// Одиночный пост пересылается, альбом собирается заново из вложений.
func (s *Service) copyToReviewGroup(ctx context.Context, post *database.Post, poster *database.User) (int, string, error) {
	if !post.IsMediaGroup() {
		fwd, err := s.tg.ForwardMessage(ctx, &bot.ForwardMessageParams{
			ChatID:     s.cfg.ReviewGroupID,
			FromChatID: post.OriginChatID,
			MessageID:  post.OriginMsgID,
		})
		if err != nil {
			return 0, "", err
		}
		return fwd.ID, "", nil
	}

	sent, err := s.sendAlbum(ctx, post, s.cfg.ReviewGroupID, post.RawText)
	if err != nil {
		return 0, "", err
	}
	groupID := sent[0].MediaGroupID
	if err := s.recordMediaGroup(ctx, groupID, sent); err != nil {
		log.Printf("review: не удалось сохранить сообщения альбома: %v", err)
	}
	return sent[0].ID, groupID, nil
}

// ============================================
// Действия модератора (кнопки "review ...")
// ============================================

// reviewKeyboard восстанавливает основную клавиатуру поста.
func reviewKeyboard(post *database.Post, hasSecond bool) models.ReplyMarkup {
	if post.IsDirectPost() {
		return markup.DirectPostKeyboard(post.Tags, spoilerPtr(post))
	}
	return markup.ReviewKeyboard(post.Tags, spoilerPtr(post), hasSecond)
}

// SetPostTag переключает тег поста на модерации.
func (s *Service) SetPostTag(ctx context.Context, query *models.CallbackQuery, payload string) error {
	post, err := s.fetchForQuery(ctx, query)
	if err != nil || post == nil {
		return err
	}
	if !s.requireStatus(ctx, query, post, database.StatusReviewing) {
		return nil
	}

	t := tags.ByPayload(payload)
	if t == nil {
		s.answer(ctx, query, messages.MsgPostNotFound, true)
		return nil
	}
	post.Tags ^= t.Seg
	if err := s.store.UpdatePostTags(ctx, post.ID, post.Tags); err != nil {
		return err
	}
	_, _ = s.tg.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      post.ReviewActionChatID,
		MessageID:   post.ReviewActionMsgID,
		ReplyMarkup: reviewKeyboard(post, s.cfg.SecondChannelID != 0),
	})
	s.answer(ctx, query, messages.FormatTagsHint(post.Tags), false)
	return nil
}

// ToggleSpoiler переключает скрытие медиа спойлером.
func (s *Service) ToggleSpoiler(ctx context.Context, query *models.CallbackQuery) error {
	post, err := s.fetchForQuery(ctx, query)
	if err != nil || post == nil {
		return err
	}
	if !s.requireStatus(ctx, query, post, database.StatusReviewing) {
		return nil
	}
	if !post.CanSpoiler() {
		s.answer(ctx, query, messages.MsgAlreadyProcessed, false)
		return nil
	}

	post.HasSpoiler = !post.HasSpoiler
	if err := s.store.UpdatePostSpoiler(ctx, post.ID, post.HasSpoiler); err != nil {
		return err
	}
	_, _ = s.tg.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      post.ReviewActionChatID,
		MessageID:   post.ReviewActionMsgID,
		ReplyMarkup: reviewKeyboard(post, s.cfg.SecondChannelID != 0),
	})
	s.answer(ctx, query, messages.FormatToggle("Спойлер", post.HasSpoiler), false)
	return nil
}

// ShowRejectKeyboard показывает выбор причины отклонения.
func (s *Service) ShowRejectKeyboard(ctx context.Context, query *models.CallbackQuery) error {
	post, err := s.fetchForQuery(ctx, query)
	if err != nil || post == nil {
		return err
	}
	if !s.requireStatus(ctx, query, post, database.StatusReviewing) {
		return nil
	}
	_, _ = s.tg.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      post.ReviewActionChatID,
		MessageID:   post.ReviewActionMsgID,
		ReplyMarkup: markup.RejectKeyboard(RejectChoices()),
	})
	s.answer(ctx, query, "", false)
	return nil
}

// BackToReview возвращает основную клавиатуру после выбора причины.
func (s *Service) BackToReview(ctx context.Context, query *models.CallbackQuery) error {
	post, err := s.fetchForQuery(ctx, query)
	if err != nil || post == nil {
		return err
	}
	if !s.requireStatus(ctx, query, post, database.StatusReviewing) {
		return nil
	}
	_, _ = s.tg.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      post.ReviewActionChatID,
		MessageID:   post.ReviewActionMsgID,
		ReplyMarkup: reviewKeyboard(post, s.cfg.SecondChannelID != 0),
	})
	s.answer(ctx, query, "", false)
	return nil
}

// AcceptPost публикует принятый пост сразу.
func (s *Service) AcceptPost(ctx context.Context, reviewer *database.User, query *models.CallbackQuery, second bool) error {
	post, err := s.fetchForQuery(ctx, query)
	if err != nil || post == nil {
		return err
	}
	if !s.requireStatus(ctx, query, post, database.StatusReviewing) {
		return nil
	}

	poster, err := s.store.GetUser(ctx, post.PosterUID)
	if err != nil {
		return err
	}
	if poster != nil && poster.IsBan {
		return s.forceRejectBanned(ctx, reviewer, query, post, poster)
	}

	channelID := s.cfg.AcceptChannelID
	status := database.StatusAccepted
	if second {
		channelID = s.cfg.SecondChannelID
		status = database.StatusAcceptedSecond
	}
	if channelID == 0 {
		s.answer(ctx, query, messages.MsgReviewGroupNotSet, true)
		return ErrNoChannel
	}

	publicMsgID, publishGroupID, warnID, err := s.publishToChannel(ctx, post, poster, channelID)
	if err != nil {
		s.metrics.SendError()
		s.answer(ctx, query, messages.MsgSendError, true)
		return err
	}

	err = s.store.UpdatePostAccepted(ctx, post.ID, reviewer.UserID, post.ReviewMsgID,
		publicMsgID, publishGroupID, warnID, status)
	if err != nil {
		return err
	}
	if err := s.store.IncUserAcceptCount(ctx, post.PosterUID); err != nil {
		return err
	}
	// прямой пост минует подтверждение, отправленным он становится здесь;
	// самопроверка в счёт модератора не идёт
	if post.IsDirectPost() {
		if err := s.store.IncUserPostCount(ctx, post.PosterUID); err != nil {
			return err
		}
	} else if reviewer.UserID != post.PosterUID {
		if err := s.store.IncUserReviewCount(ctx, reviewer.UserID); err != nil {
			return err
		}
	}

	link := messages.PostLink(channelID, publicMsgID)
	s.finishReview(ctx, post, poster, reviewer, "принят ✅", link)
	s.notifyPoster(ctx, post, poster, messages.MakeAcceptNotification(false, link))
	s.answer(ctx, query, messages.MsgPublished, false)
	s.metrics.PostAccepted()
	return nil
}

// forceRejectBanned — принудительный отказ на этапе решения: автора успели
// заблокировать, пока пост ждал модерации. Причина подставляется, архив
// и уведомление пропускаются.
func (s *Service) forceRejectBanned(ctx context.Context, reviewer *database.User, query *models.CallbackQuery, post *database.Post, poster *database.User) error {
	err := s.store.UpdatePostRejected(ctx, post.ID, bannedReason, false,
		reviewer.UserID, database.StatusRejected)
	if err != nil {
		return err
	}
	s.finishReview(ctx, post, poster, reviewer, "отклонён ❌ (автор заблокирован)", "")
	s.answer(ctx, query, messages.MsgRejectedShort, false)
	s.metrics.PostRejected()
	return nil
}

// PlanPost откладывает принятый пост для плановой публикации.
func (s *Service) PlanPost(ctx context.Context, reviewer *database.User, query *models.CallbackQuery) error {
	post, err := s.fetchForQuery(ctx, query)
	if err != nil || post == nil {
		return err
	}
	if !s.requireStatus(ctx, query, post, database.StatusReviewing) {
		return nil
	}

	if err := s.store.MarkPostInPlan(ctx, post.ID, reviewer.UserID); err != nil {
		return err
	}
	if reviewer.UserID != post.PosterUID {
		if err := s.store.IncUserReviewCount(ctx, reviewer.UserID); err != nil {
			return err
		}
	}

	poster, err := s.store.GetUser(ctx, post.PosterUID)
	if err != nil {
		return err
	}
	s.finishReview(ctx, post, poster, reviewer, "отложен ⏰", "")
	s.notifyPoster(ctx, post, poster, messages.MakeAcceptNotification(true, ""))
	s.answer(ctx, query, messages.MsgPlanned, false)
	return nil
}

// RejectPost отклоняет пост с выбранной причиной.
func (s *Service) RejectPost(ctx context.Context, reviewer *database.User, query *models.CallbackQuery, payload string) error {
	post, err := s.fetchForQuery(ctx, query)
	if err != nil || post == nil {
		return err
	}
	if !s.requireStatus(ctx, query, post, database.StatusReviewing) {
		return nil
	}

	reason := reasonByPayload(payload)
	if reason == nil {
		s.answer(ctx, query, messages.MsgPostNotFound, true)
		return nil
	}

	poster, err := s.store.GetUser(ctx, post.PosterUID)
	if err != nil {
		return err
	}
	if poster != nil && poster.IsBan {
		return s.forceRejectBanned(ctx, reviewer, query, post, poster)
	}

	err = s.store.UpdatePostRejected(ctx, post.ID, reason.Full, reason.Count,
		reviewer.UserID, database.StatusRejected)
	if err != nil {
		return err
	}
	// счётчик отклонённых растёт всегда, Count гасит только зачёт в квоту
	if err := s.store.IncUserRejectCount(ctx, post.PosterUID); err != nil {
		return err
	}
	if reviewer.UserID != post.PosterUID {
		if err := s.store.IncUserReviewCount(ctx, reviewer.UserID); err != nil {
			return err
		}
	}

	// архив отклонённых: содержимое уходит в служебный канал
	if s.cfg.RejectChannelID != 0 && post.PostType != database.TypeText {
		if _, _, _, err := s.publishToChannel(ctx, post, nil, s.cfg.RejectChannelID); err != nil {
			log.Printf("reject: не удалось отправить в архив: %v", err)
		}
	}

	s.finishReview(ctx, post, poster, reviewer, "отклонён ❌ ("+reason.Name+")", "")
	s.notifyPoster(ctx, post, poster, messages.MakeRejectNotification(reason.Full))
	s.answer(ctx, query, messages.MsgRejectedShort, false)
	s.metrics.PostRejected()
	return nil
}

// finishReview переписывает сообщение с кнопками итогом решения.
func (s *Service) finishReview(ctx context.Context, post *database.Post, poster, reviewer *database.User, result, link string) {
	_, err := s.tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:             post.ReviewActionChatID,
		MessageID:          post.ReviewActionMsgID,
		Text:               messages.MakeReviewMessage(poster, reviewer, post.Anonymous, result, link),
		ParseMode:          models.ParseModeHTML,
		LinkPreviewOptions: noPreview,
	})
	if err != nil {
		s.metrics.SendError()
	}
}

// notifyPoster доносит автору итог решения: отдельным сообщением при
// включённых уведомлениях, иначе тихой правкой его сообщения подтверждения.
func (s *Service) notifyPoster(ctx context.Context, post *database.Post, poster *database.User, text string) {
	if poster == nil {
		return
	}
	if poster.Notification && poster.PrivateChatID != 0 {
		_, err := s.tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:             poster.PrivateChatID,
			Text:               text,
			LinkPreviewOptions: noPreview,
		})
		if err != nil {
			s.metrics.SendError()
		}
		return
	}
	// у прямого поста сообщение подтверждения уже переписано итогом
	if post.IsDirectPost() || post.OriginActionMsgID == 0 {
		return
	}
	_, _ = s.tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:             post.OriginActionChatID,
		MessageID:          post.OriginActionMsgID,
		Text:               text,
		LinkPreviewOptions: noPreview,
	})
}
