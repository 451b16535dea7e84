package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const postColumns = `
	id, poster_uid,
	origin_chat_id, origin_msg_id, origin_action_chat_id, origin_action_msg_id,
	review_chat_id, review_msg_id, review_action_chat_id, review_action_msg_id,
	origin_media_group_id, review_media_group_id,
	channel_id, channel_msg_id,
	status, post_type, content_text, raw_text, anonymous, has_spoiler, tags,
	reviewer_uid, reject_reason, count_reject,
	public_msg_id, publish_media_group_id, warn_text_id,
	created_at, modified_at`

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	err := row.Scan(
		&p.ID, &p.PosterUID,
		&p.OriginChatID, &p.OriginMsgID, &p.OriginActionChatID, &p.OriginActionMsgID,
		&p.ReviewChatID, &p.ReviewMsgID, &p.ReviewActionChatID, &p.ReviewActionMsgID,
		&p.OriginMediaGroupID, &p.ReviewMediaGroupID,
		&p.ChannelID, &p.ChannelMsgID,
		&p.Status, &p.PostType, &p.Text, &p.RawText, &p.Anonymous, &p.HasSpoiler, &p.Tags,
		&p.ReviewerUID, &p.RejectReason, &p.CountReject,
		&p.PublicMsgID, &p.PublishMediaGroupID, &p.WarnTextID,
		&p.CreatedAt, &p.ModifiedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func (db *DB) CreatePost(ctx context.Context, p *Post) (int64, error) {
	query := `
		INSERT INTO posts (
			poster_uid,
			origin_chat_id, origin_msg_id, origin_action_chat_id, origin_action_msg_id,
			review_chat_id, review_msg_id, review_action_chat_id, review_action_msg_id,
			origin_media_group_id, review_media_group_id,
			channel_id, channel_msg_id,
			status, post_type, content_text, raw_text, anonymous, has_spoiler, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id`

	var id int64
	err := db.Pool.QueryRow(ctx, query,
		p.PosterUID,
		p.OriginChatID, p.OriginMsgID, p.OriginActionChatID, p.OriginActionMsgID,
		p.ReviewChatID, p.ReviewMsgID, p.ReviewActionChatID, p.ReviewActionMsgID,
		p.OriginMediaGroupID, p.ReviewMediaGroupID,
		p.ChannelID, p.ChannelMsgID,
		p.Status, p.PostType, p.Text, p.RawText, p.Anonymous, p.HasSpoiler, p.Tags,
	).Scan(&id)
	return id, err
}

func (db *DB) GetPost(ctx context.Context, id int64) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(db.Pool.QueryRow(ctx, query, id))
}

// GetPostByMessage ищет пост по любой из четырёх пар идентификаторов:
// исходное сообщение, кнопки автора, сообщение модерации, кнопки модерации.
func (db *DB) GetPostByMessage(ctx context.Context, chatID int64, msgID int) (*Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE (origin_chat_id = $1 AND origin_msg_id = $2)
		   OR (origin_action_chat_id = $1 AND origin_action_msg_id = $2)
		   OR (review_chat_id = $1 AND review_msg_id = $2)
		   OR (review_action_chat_id = $1 AND review_action_msg_id = $2)
		ORDER BY id DESC
		LIMIT 1`
	return scanPost(db.Pool.QueryRow(ctx, query, chatID, msgID))
}

func (db *DB) GetPostByMediaGroup(ctx context.Context, groupID string) (*Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE origin_media_group_id = $1 OR review_media_group_id = $1
		ORDER BY id DESC
		LIMIT 1`
	return scanPost(db.Pool.QueryRow(ctx, query, groupID))
}

func (db *DB) PostExistsByOriginGroup(ctx context.Context, groupID string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE origin_media_group_id = $1)`, groupID,
	).Scan(&exists)
	return exists, err
}

// ============================================
// Счётчики для лимитов (живые запросы за текущие сутки)
// ============================================

func (db *DB) CountPaddingSince(ctx context.Context, uid int64, since time.Time) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts WHERE poster_uid = $1 AND created_at >= $2 AND status = $3`,
		uid, since, StatusPadding,
	).Scan(&n)
	return n, err
}

func (db *DB) CountReviewingSince(ctx context.Context, uid int64, since time.Time) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts WHERE poster_uid = $1 AND created_at >= $2 AND status = $3`,
		uid, since, StatusReviewing,
	).Scan(&n)
	return n, err
}

// CountQuotaSince — принятые плюс отклонённые с зачётом в квоту.
func (db *DB) CountQuotaSince(ctx context.Context, uid int64, since time.Time) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts
		 WHERE poster_uid = $1 AND created_at >= $2
		   AND (status IN ($3, $4) OR (status = $5 AND count_reject))`,
		uid, since, StatusAccepted, StatusAcceptedSecond, StatusRejected,
	).Scan(&n)
	return n, err
}

// ============================================
// Точечные обновления (только изменённые колонки)
// ============================================

func (db *DB) UpdatePostAnonymous(ctx context.Context, id int64, anonymous bool) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE posts SET anonymous = $1, modified_at = NOW() WHERE id = $2`, anonymous, id)
	return err
}

func (db *DB) UpdatePostTags(ctx context.Context, id int64, tags int) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE posts SET tags = $1, modified_at = NOW() WHERE id = $2`, tags, id)
	return err
}

func (db *DB) UpdatePostSpoiler(ctx context.Context, id int64, hasSpoiler bool) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE posts SET has_spoiler = $1, modified_at = NOW() WHERE id = $2`, hasSpoiler, id)
	return err
}

func (db *DB) UpdatePostStatus(ctx context.Context, id int64, status PostStatus) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE posts SET status = $1, modified_at = NOW() WHERE id = $2`, status, id)
	return err
}

func (db *DB) UpdatePostReviewInfo(ctx context.Context, id int64, chatID int64, msgID int, actionChatID int64, actionMsgID int, groupID string, status PostStatus) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE posts SET
			review_chat_id = $1, review_msg_id = $2,
			review_action_chat_id = $3, review_action_msg_id = $4,
			review_media_group_id = $5, status = $6, modified_at = NOW()
		WHERE id = $7`,
		chatID, msgID, actionChatID, actionMsgID, groupID, status, id)
	return err
}

func (db *DB) UpdatePostRejected(ctx context.Context, id int64, reason string, countReject bool, reviewerUID int64, status PostStatus) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE posts SET
			reject_reason = $1, count_reject = $2, reviewer_uid = $3,
			status = $4, modified_at = NOW()
		WHERE id = $5`,
		reason, countReject, reviewerUID, status, id)
	return err
}

func (db *DB) UpdatePostAccepted(ctx context.Context, id int64, reviewerUID int64, reviewMsgID int, publicMsgID int, publishGroupID string, warnMsgID int, status PostStatus) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE posts SET
			reviewer_uid = $1, review_msg_id = $2,
			public_msg_id = $3, publish_media_group_id = $4, warn_text_id = $5,
			status = $6, modified_at = NOW()
		WHERE id = $7`,
		reviewerUID, reviewMsgID, publicMsgID, publishGroupID, warnMsgID, status, id)
	return err
}

func (db *DB) UpdatePostPublicRef(ctx context.Context, id int64, publicMsgID int, publishGroupID string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE posts SET public_msg_id = $1, publish_media_group_id = $2, modified_at = NOW()
		WHERE id = $3`,
		publicMsgID, publishGroupID, id)
	return err
}

func (db *DB) MarkPostInPlan(ctx context.Context, id int64, reviewerUID int64) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE posts SET reviewer_uid = $1, status = $2, modified_at = NOW() WHERE id = $3`,
		reviewerUID, StatusInPlan, id)
	return err
}

func (db *DB) UpdatePostPublished(ctx context.Context, id int64, publicMsgID int, publishGroupID string, warnMsgID int, status PostStatus) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE posts SET
			public_msg_id = $1, publish_media_group_id = $2, warn_text_id = $3,
			status = $4, modified_at = NOW()
		WHERE id = $5`,
		publicMsgID, publishGroupID, warnMsgID, status, id)
	return err
}

// ============================================
// Периодические задачи
// ============================================

// ListExpiredPosterIDs — авторы, у которых есть зависшие посты старше cutoff.
func (db *DB) ListExpiredPosterIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT poster_uid FROM posts
		WHERE status IN ($1, $2) AND modified_at < $3`,
		StatusPadding, StatusReviewing, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) ListStalePosts(ctx context.Context, uid int64, cutoff time.Time) ([]*Post, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE poster_uid = $1 AND status IN ($2, $3) AND modified_at < $4
		ORDER BY id`,
		uid, StatusPadding, StatusReviewing, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (db *DB) OldestPlannedPost(ctx context.Context) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 ORDER BY id LIMIT 1`
	return scanPost(db.Pool.QueryRow(ctx, query, StatusInPlan))
}
