package messages

import (
	"fmt"
	"strings"

	"go_submit_bot/database"
	"go_submit_bot/tags"
)

const (
	MsgNoRight = `🚫 У вас нет права отправлять посты.`

	MsgBanned = `🚫 Вы заблокированы и не можете отправлять посты.`

	MsgReviewGroupNotSet = `⚠️ Группа модерации не настроена, приём постов временно невозможен.`

	MsgTextEmpty = `❌ Текст поста не может быть пустым.`

	MsgUnsupportedContent = `❌ Такой тип сообщения не принимается. Отправьте текст, фото, видео или файл.`

	MsgForwardForbidden = `🚫 Пересылать посты из каналов бота запрещено.`

	MsgConfirmPost = `Отправить пост на модерацию?`

	MsgDirectPost = `У вас есть право прямой публикации: пост попадёт в канал сразу после вашего подтверждения.`

	MsgPurgeOriginNote = `
ℹ️ По настройкам бота источник этого канала не будет показан.`

	MsgAutoReject = `🚫 Посты из этого канала не принимаются.`

	MsgPostCanceled = `❌ Пост отменён.`

	MsgThanks = `✅ Пост отправлен на модерацию. Спасибо!`

	MsgPostNotFound = `Пост не найден.`

	MsgAlreadyProcessed = `Пост уже обработан, не повторяйте действие.`

	MsgNotYourPost = `Это не ваш пост.`

	MsgNoReviewRight = `У вас нет права модерации.`

	MsgPublished = `Пост опубликован.`

	MsgPlanned = `Пост будет опубликован по расписанию.`

	MsgRejectedShort = `Пост отклонён.`

	MsgAnonymousHint = `Постоянную анонимность можно включить командой /anonymous`

	MsgSendError = `❌ Ошибка отправки, попробуйте позже.`

	MsgWelcome = `👋 Это бот приёма постов.

Пришлите текст, фото, видео или альбом — после модерации пост попадёт в канал.

Команды:
/anonymous — анонимность по умолчанию
/notification — уведомления о решениях
/myinfo — ваша статистика`
)

func FormatTextTooLong(max int) string {
	return fmt.Sprintf("❌ Текст длиннее %d символов, пост не создан.", max)
}

func FormatPaddingFull(cur, limit int) string {
	return fmt.Sprintf("Очередь неподтверждённых постов заполнена (%d/%d). Сначала подтвердите или отмените прежние.", cur, limit)
}

func FormatReviewFull(cur, limit int) string {
	return fmt.Sprintf("Очередь модерации заполнена (%d/%d). Дождитесь решения по прежним постам.", cur, limit)
}

func FormatDailyFull(cur, limit int) string {
	return fmt.Sprintf("Дневной лимит постов исчерпан (%d/%d). Возвращайтесь завтра.", cur, limit)
}

func FormatTagsHint(mask int) string {
	return "Теги: " + tags.ActiveNames(mask)
}

// UserLink — HTML-ссылка на пользователя.
func UserLink(u *database.User) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, u.UserID, u.FullName())
}

// PostLink — ссылка на сообщение в канале с id вида -100xxxxxxxxxx.
func PostLink(chatID int64, msgID int) string {
	s := fmt.Sprintf("%d", chatID)
	s = strings.TrimPrefix(s, "-100")
	return fmt.Sprintf("https://t.me/c/%s/%d", s, msgID)
}

// MakePostText собирает итоговую подпись публикуемого поста.
func MakePostText(post *database.Post, poster *database.User, channelTitle string, purge bool) string {
	var footer []string

	if post.IsFromChannel() && !purge && channelTitle != "" {
		footer = append(footer, "📢 "+channelTitle)
	}
	if !post.Anonymous {
		footer = append(footer, "👤 "+UserLink(poster))
	}
	if post.Tags != 0 {
		footer = append(footer, tags.ActiveNames(post.Tags))
	}

	if len(footer) == 0 {
		return post.Text
	}
	if post.Text == "" {
		return strings.Join(footer, "\n")
	}
	return post.Text + "\n\n" + strings.Join(footer, "\n")
}

// MakeReviewMessage — сообщение о посте в группе модерации.
func MakeReviewMessage(poster, reviewer *database.User, anonymous bool, result, link string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Автор: %s", UserLink(poster))
	if anonymous {
		b.WriteString(" (анонимно)")
	}
	b.WriteString("\n")

	if result == "" {
		b.WriteString("Статус: ожидает решения")
	} else {
		b.WriteString("Статус: " + result)
	}

	if reviewer != nil {
		fmt.Fprintf(&b, "\nМодератор: %s", UserLink(reviewer))
	}
	if link != "" {
		fmt.Fprintf(&b, "\n%s", link)
	}
	return b.String()
}

// MakeAcceptNotification — уведомление автору о публикации.
func MakeAcceptNotification(inPlan bool, link string) string {
	if inPlan {
		return "⏰ Пост принят и будет опубликован по расписанию."
	}
	if link == "" {
		return "🎉 Пост опубликован!"
	}
	return "🎉 Пост опубликован!\n" + link
}

func MakeRejectNotification(reason string) string {
	return "😕 Пост отклонён.\nПричина: " + reason
}

// FormatExpiredSummary — сводка вычищенных постов для автора.
func FormatExpiredSummary(confirmTimeouts, reviewTimeouts int) string {
	var b strings.Builder
	if confirmTimeouts > 0 {
		fmt.Fprintf(&b, "⏳ Постов удалено по таймауту подтверждения: %d\n", confirmTimeouts)
	}
	if reviewTimeouts > 0 {
		fmt.Fprintf(&b, "⏳ Постов удалено по таймауту модерации: %d\n", reviewTimeouts)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatMyInfo — статистика пользователя для /myinfo.
func FormatMyInfo(u *database.User) string {
	return fmt.Sprintf(`📊 Ваша статистика:

Принято: %d
Отклонено: %d
Отправлено: %d
Просрочено: %d`,
		u.AcceptCount, u.RejectCount, u.PostCount, u.ExpiredPostCount)
}

func FormatToggle(name string, on bool) string {
	if on {
		return name + ": включено"
	}
	return name + ": выключено"
}
