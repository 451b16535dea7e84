package posts

import (
	"context"

	"github.com/go-telegram/bot/models"

	"go_submit_bot/database"
	"go_submit_bot/messages"
)

// limits считает действующие суточные лимиты пользователя.
// Коэффициент растёт с числом принятых постов: accepted/divisor + 1,
// но не выше максимума. Новичкам без принятых постов лимиты режутся
// до 2/1/1, чтобы спам не занимал очередь модерации.
func (s *Service) limits(acceptCount int) (padding, review, daily int) {
	ratio := acceptCount/s.cfg.RatioDivisor + 1
	if ratio > s.cfg.MaxRatio {
		ratio = s.cfg.MaxRatio
	}

	padding = s.cfg.DailyPaddingLimit * ratio
	review = s.cfg.DailyReviewLimit * ratio
	daily = s.cfg.DailyPostLimit * ratio

	if acceptCount == 0 {
		if padding > 2 {
			padding = 2
		}
		if review > 1 {
			review = 1
		}
		if daily > 1 {
			daily = 1
		}
	}
	return padding, review, daily
}

// limitDenial проверяет суточные лимиты и возвращает текст отказа,
// пустая строка — лимиты не превышены. confirm == true означает проверку
// на подтверждении: черновик уже лежит в очереди и сам себя не блокирует.
func (s *Service) limitDenial(ctx context.Context, user *database.User, confirm bool) (string, error) {
	if user.Rights.Has(database.RightAdmin) {
		return "", nil
	}
	// глобальное отключение лимитов не распространяется на новичков:
	// до первого принятого поста урезанные пороги действуют всегда
	if !s.cfg.EnablePostLimit && user.AcceptCount > 0 {
		return "", nil
	}

	padding, review, daily := s.limits(user.AcceptCount)
	since := s.midnight()

	if !confirm {
		n, err := s.store.CountPaddingSince(ctx, user.UserID, since)
		if err != nil {
			return "", err
		}
		if n >= padding {
			return messages.FormatPaddingFull(n, padding), nil
		}
	}

	n, err := s.store.CountReviewingSince(ctx, user.UserID, since)
	if err != nil {
		return "", err
	}
	if n >= review {
		return messages.FormatReviewFull(n, review), nil
	}

	n, err = s.store.CountQuotaSince(ctx, user.UserID, since)
	if err != nil {
		return "", err
	}
	if n >= daily {
		return messages.FormatDailyFull(n, daily), nil
	}

	return "", nil
}

// CheckPostLimit проверяет суточные лимиты перед созданием черновика.
// При отказе сам отвечает пользователю и возвращает false.
func (s *Service) CheckPostLimit(ctx context.Context, user *database.User, msg *models.Message) (bool, error) {
	denial, err := s.limitDenial(ctx, user, false)
	if err != nil {
		return false, err
	}
	if denial != "" {
		s.reply(ctx, msg, denial)
		return false, nil
	}
	return true, nil
}
