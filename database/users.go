package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const userColumns = `
	user_id, username, first_name, last_name,
	rights, is_ban, prefer_anonymous, notification, private_chat_id,
	accept_count, reject_count, post_count, review_count, expired_post_count,
	created_at, modified_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.UserID, &u.Username, &u.FirstName, &u.LastName,
		&u.Rights, &u.IsBan, &u.PreferAnonymous, &u.Notification, &u.PrivateChatID,
		&u.AcceptCount, &u.RejectCount, &u.PostCount, &u.ReviewCount, &u.ExpiredPostCount,
		&u.CreatedAt, &u.ModifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &u, err
}

// GetOrCreateUser регистрирует пользователя при первом обращении и обновляет
// имя при последующих. Приватный чат с ботом совпадает с id пользователя.
func (db *DB) GetOrCreateUser(ctx context.Context, id int64, username, firstName, lastName string) (*User, error) {
	query := `
		INSERT INTO users (user_id, username, first_name, last_name, private_chat_id)
		VALUES ($1, $2, $3, $4, $1)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, id, username, firstName, lastName))
}

func (db *DB) GetUser(ctx context.Context, uid int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, uid))
}

func (db *DB) SetUserAnonymous(ctx context.Context, uid int64, v bool) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE users SET prefer_anonymous = $1, modified_at = NOW() WHERE user_id = $2`, v, uid)
	return err
}

func (db *DB) SetUserNotification(ctx context.Context, uid int64, v bool) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE users SET notification = $1, modified_at = NOW() WHERE user_id = $2`, v, uid)
	return err
}

// ============================================
// Счётчики: единственный инкремент на событие, без чтения-изменения-записи
// ============================================

func (db *DB) IncUserPostCount(ctx context.Context, uid int64) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE users SET post_count = post_count + 1, modified_at = NOW() WHERE user_id = $1`, uid)
	return err
}

func (db *DB) IncUserAcceptCount(ctx context.Context, uid int64) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE users SET accept_count = accept_count + 1, modified_at = NOW() WHERE user_id = $1`, uid)
	return err
}

func (db *DB) IncUserRejectCount(ctx context.Context, uid int64) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE users SET reject_count = reject_count + 1, modified_at = NOW() WHERE user_id = $1`, uid)
	return err
}

func (db *DB) IncUserReviewCount(ctx context.Context, uid int64) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE users SET review_count = review_count + 1, modified_at = NOW() WHERE user_id = $1`, uid)
	return err
}

func (db *DB) AddUserExpiredCount(ctx context.Context, uid int64, n int) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE users SET expired_post_count = expired_post_count + $1, modified_at = NOW() WHERE user_id = $2`, n, uid)
	return err
}

// DisableUserNotify отключает доставку уведомлений после сбоя отправки.
func (db *DB) DisableUserNotify(ctx context.Context, uid int64) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE users SET private_chat_id = 0, modified_at = NOW() WHERE user_id = $1`, uid)
	return err
}
