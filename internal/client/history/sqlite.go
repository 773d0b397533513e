package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chatterm/internal/client/models"
	"chatterm/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Replace(ctx context.Context, userID string, msgs []models.ChatMessage) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ?`, userID); err != nil {
			return err
		}
		for _, m := range msgs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO messages (id, user_id, sender, text, created_at)
				VALUES (?, ?, ?, ?, ?)
			`, m.ID, userID, string(m.Sender), m.Text, m.CreatedAt.UnixMilli())
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace chat log for %q: %w", userID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender, text, created_at
		FROM messages
		WHERE user_id = ?
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat log for %q: %w", userID, err)
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		var sender string
		var createdAt int64
		if err := rows.Scan(&m.ID, &sender, &m.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		m.Sender = models.Sender(sender)
		m.CreatedAt = time.UnixMilli(createdAt)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}
	return msgs, nil
}
