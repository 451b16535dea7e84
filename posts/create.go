package posts

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"go_submit_bot/database"
	"go_submit_bot/markup"
	"go_submit_bot/messages"
	"go_submit_bot/tags"
)

// DetectType определяет тип содержимого и вложение сообщения.
func DetectType(msg *models.Message) (database.PostType, *database.Attachment) {
	switch {
	case len(msg.Photo) > 0:
		// последний размер — самый крупный
		ph := msg.Photo[len(msg.Photo)-1]
		return database.TypePhoto, &database.Attachment{
			FileID:   ph.FileID,
			FileSize: int64(ph.FileSize),
			Type:     database.TypePhoto,
		}
	case msg.Video != nil:
		return database.TypeVideo, &database.Attachment{
			FileID:   msg.Video.FileID,
			FileName: msg.Video.FileName,
			FileSize: int64(msg.Video.FileSize),
			Type:     database.TypeVideo,
		}
	case msg.Animation != nil:
		return database.TypeAnimation, &database.Attachment{
			FileID:   msg.Animation.FileID,
			FileName: msg.Animation.FileName,
			FileSize: int64(msg.Animation.FileSize),
			Type:     database.TypeAnimation,
		}
	case msg.Audio != nil:
		return database.TypeAudio, &database.Attachment{
			FileID:   msg.Audio.FileID,
			FileName: msg.Audio.FileName,
			FileSize: int64(msg.Audio.FileSize),
			Type:     database.TypeAudio,
		}
	case msg.Voice != nil:
		return database.TypeVoice, &database.Attachment{
			FileID:   msg.Voice.FileID,
			FileSize: int64(msg.Voice.FileSize),
			Type:     database.TypeVoice,
		}
	case msg.Document != nil:
		return database.TypeDocument, &database.Attachment{
			FileID:   msg.Document.FileID,
			FileName: msg.Document.FileName,
			FileSize: int64(msg.Document.FileSize),
			Type:     database.TypeDocument,
		}
	case msg.Text != "":
		return database.TypeText, nil
	}
	return database.TypeUnknown, nil
}

// channelOrigin — канал-источник пересланного сообщения, если есть.
func channelOrigin(msg *models.Message) (int64, int, string) {
	if msg.ForwardOrigin == nil || msg.ForwardOrigin.Type != models.MessageOriginTypeChannel {
		return 0, 0, ""
	}
	ch := msg.ForwardOrigin.MessageOriginChannel
	return ch.Chat.ID, ch.MessageID, ch.Chat.Title
}

// ownChannel сообщает, принадлежит ли канал самому боту.
func (s *Service) ownChannel(channelID int64) bool {
	return channelID != 0 &&
		(channelID == s.cfg.AcceptChannelID ||
			channelID == s.cfg.SecondChannelID ||
			channelID == s.cfg.RejectChannelID)
}

// HandleTextPost принимает текстовый пост.
func (s *Service) HandleTextPost(ctx context.Context, user *database.User, msg *models.Message) error {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		s.reply(ctx, msg, messages.MsgTextEmpty)
		return nil
	}
	if len([]rune(text)) > s.cfg.MaxPostText {
		s.reply(ctx, msg, messages.FormatTextTooLong(s.cfg.MaxPostText))
		return nil
	}
	return s.createPost(ctx, user, msg, database.TypeText, text, nil, "")
}

// HandleMediaPost принимает одиночный пост с медиа.
func (s *Service) HandleMediaPost(ctx context.Context, user *database.User, msg *models.Message) error {
	ptype, att := DetectType(msg)
	if ptype == database.TypeUnknown || ptype == database.TypeText {
		s.reply(ctx, msg, messages.MsgUnsupportedContent)
		return nil
	}
	return s.createPost(ctx, user, msg, ptype, msg.Caption, att, "")
}

// HandleMediaGroupPost принимает сообщение альбома. Первое сообщение группы
// создаёт пост, остальные ждут его id и дописывают свои вложения.
func (s *Service) HandleMediaGroupPost(ctx context.Context, user *database.User, msg *models.Message) error {
	ptype, att := DetectType(msg)
	if att == nil {
		s.reply(ctx, msg, messages.MsgUnsupportedContent)
		return nil
	}
	key := msg.MediaGroupID

	entry, creator := s.groups.Claim(key)
	if !creator {
		// догоняющее сообщение: ждём пост создателя
		postID, err := entry.Resolve(ctx)
		if err != nil {
			return err
		}
		if postID == 0 {
			return nil
		}
		att.PostID = postID
		return s.store.AddAttachment(ctx, att)
	}

	// альбом собирается в пределах окна, показываем активность
	_, _ = s.tg.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: msg.Chat.ID,
		Action: models.ChatActionTyping,
	})

	// защита от повторной доставки группы после рестарта
	exists, err := s.store.PostExistsByOriginGroup(ctx, key)
	if err != nil {
		s.groups.Abort(key)
		return err
	}
	if exists {
		s.groups.Abort(key)
		return nil
	}

	// текст берётся из сообщения с подписью; обычно это первое
	err = s.createPost(ctx, user, msg, ptype, msg.Caption, att, key)
	if err != nil {
		s.groups.Abort(key)
		return err
	}

	post, err := s.store.GetPostByMediaGroup(ctx, key)
	if err != nil || post == nil {
		// пост не создан (лимит или политика канала), снимаем заявку
		s.groups.Abort(key)
		return err
	}
	s.groups.Commit(key, post.ID, nil)
	return nil
}

// createPost создаёт черновик и отправляет автору клавиатуру подтверждения.
func (s *Service) createPost(ctx context.Context, user *database.User, msg *models.Message, ptype database.PostType, text string, att *database.Attachment, groupID string) error {
	ok, err := s.CheckPostLimit(ctx, user, msg)
	if err != nil || !ok {
		return err
	}

	channelID, channelMsgID, channelTitle := channelOrigin(msg)
	if s.ownChannel(channelID) {
		s.reply(ctx, msg, messages.MsgForwardForbidden)
		return nil
	}

	post := &database.Post{
		PosterUID:          user.UserID,
		OriginChatID:       msg.Chat.ID,
		OriginMsgID:        msg.ID,
		OriginMediaGroupID: groupID,
		ChannelID:          channelID,
		ChannelMsgID:       channelMsgID,
		Status:             database.StatusPadding,
		PostType:           ptype,
		Text:               text,
		RawText:            text,
		Anonymous:          user.PreferAnonymous,
		Tags:               tags.Fetch(text),
	}

	purge := false
	if channelID != 0 {
		opt, err := s.resolver.Resolve(ctx, channelID, channelTitle)
		if err != nil {
			return err
		}
		switch opt {
		case database.ChannelAutoReject:
			// отказ фиксируется в базе, клавиатура не отправляется
			post.Status = database.StatusRejected
			post.RejectReason = autoRejectReason
			id, err := s.store.CreatePost(ctx, post)
			if err != nil {
				return err
			}
			if att != nil {
				att.PostID = id
				if err := s.store.AddAttachment(ctx, att); err != nil {
					return err
				}
			}
			s.reply(ctx, msg, messages.MsgAutoReject)
			s.metrics.PostRejected()
			return nil
		case database.ChannelPurgeOrigin:
			// источник остаётся в записи, но скрывается при публикации
			purge = true
		}
	}

	direct := user.Rights.Has(database.RightDirectPost)

	var confirm strings.Builder
	if direct {
		confirm.WriteString(messages.MsgDirectPost)
	} else {
		confirm.WriteString(messages.MsgConfirmPost)
	}
	if purge {
		confirm.WriteString(messages.MsgPurgeOriginNote)
	}
	confirm.WriteString("\n\n" + messages.FormatTagsHint(post.Tags))
	if !post.Anonymous && !direct {
		confirm.WriteString("\n" + messages.MsgAnonymousHint)
	}

	var kb models.ReplyMarkup
	if direct {
		kb = markup.DirectPostKeyboard(post.Tags, spoilerPtr(post))
	} else {
		kb = markup.PostKeyboard(post.Anonymous)
	}

	action, err := s.tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        confirm.String(),
		ReplyMarkup: kb,
		ReplyParameters: &models.ReplyParameters{
			MessageID:                msg.ID,
			AllowSendingWithoutReply: true,
		},
	})
	if err != nil {
		s.metrics.SendError()
		return err
	}

	post.OriginActionChatID = action.Chat.ID
	post.OriginActionMsgID = action.ID

	if direct {
		// прямой пост минует очередь подтверждения: поля модерации
		// зеркалируют исходные, решение принимает сам автор
		post.Status = database.StatusReviewing
		post.ReviewChatID = post.OriginChatID
		post.ReviewMsgID = post.OriginMsgID
		post.ReviewActionChatID = action.Chat.ID
		post.ReviewActionMsgID = action.ID
		post.ReviewMediaGroupID = groupID
	}

	id, err := s.store.CreatePost(ctx, post)
	if err != nil {
		return err
	}
	post.ID = id

	if att != nil {
		att.PostID = id
		if err := s.store.AddAttachment(ctx, att); err != nil {
			return err
		}
	}

	s.metrics.PostCreated()
	return nil
}
