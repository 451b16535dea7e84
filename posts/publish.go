package posts

import (
	"context"
	"fmt"
	"log"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"go_submit_bot/database"
	"go_submit_bot/messages"
	"go_submit_bot/tags"
)

// publishToChannel отправляет содержимое поста в канал и возвращает id
// опубликованного сообщения, media_group_id альбома и id предупреждения.
// poster == nil означает служебную отправку без подписи и предупреждений
// (архив отклонённых).
func (s *Service) publishToChannel(ctx context.Context, post *database.Post, poster *database.User, chatID int64) (int, string, int, error) {
	caption := post.Text
	if poster != nil {
		// политика источника перечитывается на публикации: её могли
		// сменить, пока пост ждал решения
		channelTitle := ""
		purge := false
		if post.IsFromChannel() {
			cs, err := s.store.GetChannelSetting(ctx, post.ChannelID)
			if err == nil && cs != nil {
				channelTitle = cs.Title
				purge = cs.Option == database.ChannelPurgeOrigin
			}
		}
		caption = messages.MakePostText(post, poster, channelTitle, purge)
	}

	if err := s.throttle.Wait(ctx); err != nil {
		return 0, "", 0, err
	}

	var (
		publicMsgID    int
		publishGroupID string
	)

	if post.IsMediaGroup() {
		sent, err := s.sendAlbum(ctx, post, chatID, caption)
		if err != nil {
			return 0, "", 0, err
		}
		publicMsgID = sent[0].ID
		publishGroupID = sent[0].MediaGroupID
		if err := s.recordMediaGroup(ctx, publishGroupID, sent); err != nil {
			log.Printf("publish: не удалось сохранить сообщения альбома: %v", err)
		}
	} else {
		sent, err := s.sendSingle(ctx, post, chatID, caption)
		if err != nil {
			return 0, "", 0, err
		}
		publicMsgID = sent.ID
	}

	warnID := 0
	if poster != nil {
		if warn := tags.Warnings(post.Tags); warn != "" {
			if err := s.throttle.Wait(ctx); err != nil {
				return publicMsgID, publishGroupID, 0, err
			}
			wm, err := s.tg.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   warn,
				ReplyParameters: &models.ReplyParameters{
					MessageID:                publicMsgID,
					AllowSendingWithoutReply: true,
				},
				DisableNotification: true,
			})
			if err != nil {
				s.metrics.SendError()
			} else {
				warnID = wm.ID
			}
		}
	}

	return publicMsgID, publishGroupID, warnID, nil
}

// sendSingle отправляет одиночный пост нужным методом Telegram.
func (s *Service) sendSingle(ctx context.Context, post *database.Post, chatID int64, caption string) (*models.Message, error) {
	if post.PostType == database.TypeText {
		return s.tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:             chatID,
			Text:               caption,
			ParseMode:          models.ParseModeHTML,
			LinkPreviewOptions: noPreview,
		})
	}

	atts, err := s.store.ListAttachments(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if len(atts) == 0 {
		return nil, fmt.Errorf("%w: нет вложений у поста %d", ErrUnsupportedType, post.ID)
	}
	file := &models.InputFileString{Data: atts[0].FileID}

	switch post.PostType {
	case database.TypePhoto:
		return s.tg.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID: chatID, Photo: file,
			Caption: caption, ParseMode: models.ParseModeHTML,
			HasSpoiler: post.HasSpoiler,
		})
	case database.TypeVideo:
		return s.tg.SendVideo(ctx, &bot.SendVideoParams{
			ChatID: chatID, Video: file,
			Caption: caption, ParseMode: models.ParseModeHTML,
			HasSpoiler: post.HasSpoiler,
		})
	case database.TypeAnimation:
		return s.tg.SendAnimation(ctx, &bot.SendAnimationParams{
			ChatID: chatID, Animation: file,
			Caption: caption, ParseMode: models.ParseModeHTML,
			HasSpoiler: post.HasSpoiler,
		})
	case database.TypeAudio:
		return s.tg.SendAudio(ctx, &bot.SendAudioParams{
			ChatID: chatID, Audio: file,
			Caption: caption, ParseMode: models.ParseModeHTML,
		})
	case database.TypeVoice:
		return s.tg.SendVoice(ctx, &bot.SendVoiceParams{
			ChatID: chatID, Voice: file,
			Caption: caption, ParseMode: models.ParseModeHTML,
		})
	case database.TypeDocument:
		return s.tg.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID: chatID, Document: file,
			Caption: caption, ParseMode: models.ParseModeHTML,
		})
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, post.PostType)
}

// sendAlbum пересобирает альбом из сохранённых вложений. Подпись ставится
// на первый элемент, Telegram показывает её под всем альбомом.
func (s *Service) sendAlbum(ctx context.Context, post *database.Post, chatID int64, caption string) ([]*models.Message, error) {
	atts, err := s.store.ListAttachments(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if len(atts) == 0 {
		return nil, fmt.Errorf("%w: нет вложений у поста %d", ErrUnsupportedType, post.ID)
	}

	media := make([]models.InputMedia, 0, len(atts))
	for i, a := range atts {
		c, pm := "", models.ParseMode("")
		if i == 0 {
			c, pm = caption, models.ParseModeHTML
		}
		switch a.Type {
		case database.TypePhoto:
			media = append(media, &models.InputMediaPhoto{
				Media: a.FileID, Caption: c, ParseMode: pm,
				HasSpoiler: post.HasSpoiler,
			})
		case database.TypeVideo, database.TypeAnimation:
			media = append(media, &models.InputMediaVideo{
				Media: a.FileID, Caption: c, ParseMode: pm,
				HasSpoiler: post.HasSpoiler,
			})
		case database.TypeAudio, database.TypeVoice:
			media = append(media, &models.InputMediaAudio{
				Media: a.FileID, Caption: c, ParseMode: pm,
			})
		case database.TypeDocument:
			media = append(media, &models.InputMediaDocument{
				Media: a.FileID, Caption: c, ParseMode: pm,
			})
		default:
			return nil, fmt.Errorf("%w: %s в альбоме", ErrUnsupportedType, a.Type)
		}
	}

	sent, err := s.tg.SendMediaGroup(ctx, &bot.SendMediaGroupParams{
		ChatID: chatID,
		Media:  media,
	})
	if err != nil {
		return nil, err
	}
	if len(sent) == 0 {
		return nil, fmt.Errorf("пустой ответ на отправку альбома поста %d", post.ID)
	}
	return sent, nil
}

// recordMediaGroup сохраняет соответствие media_group_id и сообщений.
func (s *Service) recordMediaGroup(ctx context.Context, groupID string, sent []*models.Message) error {
	if groupID == "" {
		return nil
	}
	msgs := make([]*database.MediaGroupMessage, 0, len(sent))
	for _, m := range sent {
		msgs = append(msgs, &database.MediaGroupMessage{
			MediaGroupID: groupID,
			ChatID:       m.Chat.ID,
			MessageID:    m.ID,
		})
	}
	return s.store.AddMediaGroupMessages(ctx, msgs)
}
