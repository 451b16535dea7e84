package database

import "context"

func (db *DB) AddAttachment(ctx context.Context, a *Attachment) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO attachments (post_id, file_id, file_name, file_size, file_type)
		VALUES ($1, $2, $3, $4, $5)`,
		a.PostID, a.FileID, a.FileName, a.FileSize, a.Type)
	return err
}

// ListAttachments возвращает вложения в порядке поступления.
func (db *DB) ListAttachments(ctx context.Context, postID int64) ([]*Attachment, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, post_id, file_id, file_name, file_size, file_type, created_at
		FROM attachments
		WHERE post_id = $1
		ORDER BY id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.PostID, &a.FileID, &a.FileName, &a.FileSize, &a.Type, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
