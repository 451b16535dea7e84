package posts

import (
	"context"

	"github.com/go-telegram/bot/models"

	"go_submit_bot/database"
)

// FetchPostFromMessage находит пост по сообщению, на котором нажали кнопку.
// Сначала по паре чат+сообщение, затем по media_group_id для альбомов.
func (s *Service) FetchPostFromMessage(ctx context.Context, msg *models.Message) (*database.Post, error) {
	post, err := s.store.GetPostByMessage(ctx, msg.Chat.ID, msg.ID)
	if err != nil || post != nil {
		return post, err
	}
	if msg.ReplyToMessage != nil {
		rt := msg.ReplyToMessage
		post, err = s.store.GetPostByMessage(ctx, rt.Chat.ID, rt.ID)
		if err != nil || post != nil {
			return post, err
		}
		if rt.MediaGroupID != "" {
			return s.store.GetPostByMediaGroup(ctx, rt.MediaGroupID)
		}
	}
	if msg.MediaGroupID != "" {
		return s.store.GetPostByMediaGroup(ctx, msg.MediaGroupID)
	}
	return nil, nil
}
