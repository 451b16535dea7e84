package posts

import (
	"context"
	"log"

	"github.com/go-telegram/bot"

	"go_submit_bot/database"
	"go_submit_bot/messages"
	"go_submit_bot/tglog"
)

// CleanExpiredPosts закрывает зависшие посты: неподтверждённые получают
// статус "истёк срок подтверждения", непроверенные — "истёк срок модерации".
// Нулевой порог отключает чистку.
func (s *Service) CleanExpiredPosts(ctx context.Context) error {
	if s.cfg.PostExpiredDays <= 0 {
		return nil
	}
	cutoff := s.now().AddDate(0, 0, -s.cfg.PostExpiredDays)

	posterIDs, err := s.store.ListExpiredPosterIDs(ctx, cutoff)
	if err != nil {
		return err
	}

	total := 0
	for _, uid := range posterIDs {
		stale, err := s.store.ListStalePosts(ctx, uid, cutoff)
		if err != nil {
			return err
		}

		confirmTimeouts, reviewTimeouts := 0, 0
		for _, post := range stale {
			switch post.Status {
			case database.StatusPadding:
				if err := s.store.UpdatePostStatus(ctx, post.ID, database.StatusConfirmTimeout); err != nil {
					return err
				}
				s.clearKeyboard(ctx, post.OriginActionChatID, post.OriginActionMsgID)
				confirmTimeouts++
			case database.StatusReviewing:
				if err := s.store.UpdatePostStatus(ctx, post.ID, database.StatusReviewTimeout); err != nil {
					return err
				}
				s.clearKeyboard(ctx, post.ReviewActionChatID, post.ReviewActionMsgID)
				reviewTimeouts++
			}
		}
		if confirmTimeouts+reviewTimeouts == 0 {
			continue
		}
		total += confirmTimeouts + reviewTimeouts

		// в личный счёт просроченных идут только посты, до которых
		// не дошла модерация
		if reviewTimeouts > 0 {
			if err := s.store.AddUserExpiredCount(ctx, uid, reviewTimeouts); err != nil {
				return err
			}
		}

		s.notifyExpired(ctx, uid, confirmTimeouts, reviewTimeouts)
	}

	if total > 0 {
		s.metrics.PostsExpired(total)
		tglog.Send("чистка: закрыто %d зависших постов", total)
	}
	return nil
}

// notifyExpired шлёт автору сводку. Недоставленное уведомление выключает
// уведомления: чат с ботом, скорее всего, удалён.
func (s *Service) notifyExpired(ctx context.Context, uid int64, confirmTimeouts, reviewTimeouts int) {
	user, err := s.store.GetUser(ctx, uid)
	if err != nil || user == nil {
		return
	}
	if user.IsBan || !user.Notification || user.PrivateChatID == 0 {
		return
	}
	_, err = s.tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: user.PrivateChatID,
		Text:   messages.FormatExpiredSummary(confirmTimeouts, reviewTimeouts),
	})
	if err != nil {
		s.metrics.SendError()
		if derr := s.store.DisableUserNotify(ctx, uid); derr != nil {
			log.Printf("чистка: не удалось выключить уведомления %d: %v", uid, derr)
		}
	}
}

// PublishPlannedPost публикует самый старый отложенный пост, не больше
// одного за вызов. При ошибке публикации пост остаётся отложенным и
// будет повторён на следующем проходе.
func (s *Service) PublishPlannedPost(ctx context.Context) error {
	post, err := s.store.OldestPlannedPost(ctx)
	if err != nil {
		return err
	}
	if post == nil {
		return nil
	}
	if s.cfg.AcceptChannelID == 0 {
		return ErrNoChannel
	}

	poster, err := s.store.GetUser(ctx, post.PosterUID)
	if err != nil {
		return err
	}

	publicMsgID, publishGroupID, warnID, err := s.publishToChannel(ctx, post, poster, s.cfg.AcceptChannelID)
	if err != nil {
		s.metrics.SendError()
		tglog.Send("план: публикация поста %d не удалась: %v", post.ID, err)
		return err
	}

	err = s.store.UpdatePostPublished(ctx, post.ID, publicMsgID, publishGroupID, warnID, database.StatusAccepted)
	if err != nil {
		return err
	}
	if err := s.store.IncUserAcceptCount(ctx, post.PosterUID); err != nil {
		return err
	}

	link := messages.PostLink(s.cfg.AcceptChannelID, publicMsgID)
	if post.ReviewerUID != 0 {
		if reviewer, err := s.store.GetUser(ctx, post.ReviewerUID); err == nil && reviewer != nil {
			s.finishReview(ctx, post, poster, reviewer, "опубликован по плану ✅", link)
		}
	}
	s.notifyPoster(ctx, post, poster, messages.MakeAcceptNotification(false, link))

	s.metrics.PlannedPublished()
	return nil
}
