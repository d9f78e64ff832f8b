package storage

import (
	"context"
	"fmt"

	"github.com/hyperjump/tanya/internal/models"
)

// CreateMessage appends a chat history entry and sets its ID. CreatedAt is set when zero.
func (s *SQLiteStorage) CreateMessage(ctx context.Context, m *models.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (user_id, question, answer, created_at) VALUES (?, ?, ?, ?)`,
		m.UserID, m.Question, m.Answer, m.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	m.ID, err = res.LastInsertId()
	return err
}

// ListMessagesByUser returns the user's history ordered by timestamp descending.
// Entries with equal timestamps are ordered by id descending.
func (s *SQLiteStorage) ListMessagesByUser(ctx context.Context, userID int64) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, question, answer, created_at FROM messages
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Question, &m.Answer, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
