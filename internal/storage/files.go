package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hyperjump/tanya/internal/models"
)

const fileColumns = `id, user_id, path, original_name, caption, content_type, size, ingested, ingested_at, created_at`

func scanFile(row rowScanner) (*models.File, error) {
	var f models.File
	var ingestedAt sql.NullTime
	if err := row.Scan(&f.ID, &f.UserID, &f.Path, &f.OriginalName, &f.Caption, &f.ContentType,
		&f.Size, &f.Ingested, &ingestedAt, &f.CreatedAt); err != nil {
		return nil, err
	}
	if ingestedAt.Valid {
		t := ingestedAt.Time
		f.IngestedAt = &t
	}
	return &f, nil
}

// CreateFile inserts a file record with ingested=false and sets its ID and CreatedAt.
func (s *SQLiteStorage) CreateFile(ctx context.Context, f *models.File) error {
	f.CreatedAt = now()
	f.Ingested = false
	f.IngestedAt = nil
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO files (user_id, path, original_name, caption, content_type, size, ingested, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		f.UserID, f.Path, f.OriginalName, f.Caption, f.ContentType, f.Size, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	f.ID, err = res.LastInsertId()
	return err
}

// GetFile returns a file record by ID.
func (s *SQLiteStorage) GetFile(ctx context.Context, id int64) (*models.File, error) {
	f, err := scanFile(s.db.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %d: %w", id, ErrNotFound)
	}
	return f, err
}

// ListFilesByUser returns a user's files, newest first.
func (s *SQLiteStorage) ListFilesByUser(ctx context.Context, userID int64) ([]*models.File, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// MarkFileIngested sets ingested=true if it is still false.
func (s *SQLiteStorage) MarkFileIngested(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE files SET ingested = 1, ingested_at = ? WHERE id = ? AND ingested = 0", now(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		if _, err := s.GetFile(ctx, id); err != nil {
			return false, err
		}
	}
	return n == 1, nil
}
