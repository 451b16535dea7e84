package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// UpsertChannelSetting регистрирует канал-источник с политикой Normal
// и увеличивает счётчик обращений.
func (db *DB) UpsertChannelSetting(ctx context.Context, channelID int64, title string) (*ChannelSetting, error) {
	query := `
		INSERT INTO channel_options (channel_id, title, hit_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (channel_id) DO UPDATE SET
			title = EXCLUDED.title,
			hit_count = channel_options.hit_count + 1,
			modified_at = NOW()
		RETURNING id, channel_id, title, option, hit_count, created_at, modified_at`

	var cs ChannelSetting
	err := db.Pool.QueryRow(ctx, query, channelID, title).Scan(
		&cs.ID, &cs.ChannelID, &cs.Title, &cs.Option, &cs.HitCount, &cs.CreatedAt, &cs.ModifiedAt,
	)
	return &cs, err
}

func (db *DB) GetChannelSetting(ctx context.Context, channelID int64) (*ChannelSetting, error) {
	var cs ChannelSetting
	err := db.Pool.QueryRow(ctx, `
		SELECT id, channel_id, title, option, hit_count, created_at, modified_at
		FROM channel_options
		WHERE channel_id = $1`, channelID).Scan(
		&cs.ID, &cs.ChannelID, &cs.Title, &cs.Option, &cs.HitCount, &cs.CreatedAt, &cs.ModifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}
