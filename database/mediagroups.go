package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// AddMediaGroupMessages записывает связку media_group_id -> сообщения одним батчем.
func (db *DB) AddMediaGroupMessages(ctx context.Context, msgs []*MediaGroupMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range msgs {
		batch.Queue(`
			INSERT INTO media_group_messages (media_group_id, chat_id, message_id)
			VALUES ($1, $2, $3)`,
			m.MediaGroupID, m.ChatID, m.MessageID)
	}
	return db.Pool.SendBatch(ctx, batch).Close()
}
