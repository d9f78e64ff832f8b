// Package storage defines the persistence interfaces for users, roles, files and chat history.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/tanya/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique column already holds the value.
	ErrConflict = errors.New("already exists")
)

// UserStore persists users and roles.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, userID, roleID int64) error

	CreateRole(ctx context.Context, name string) (*models.Role, error)
	GetRole(ctx context.Context, id int64) (*models.Role, error)
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]*models.Role, error)
}

// FileStore persists uploaded file records.
type FileStore interface {
	CreateFile(ctx context.Context, f *models.File) error
	GetFile(ctx context.Context, id int64) (*models.File, error)
	ListFilesByUser(ctx context.Context, userID int64) ([]*models.File, error)
	// MarkFileIngested flips the ingested flag once. It reports whether this call made the transition.
	MarkFileIngested(ctx context.Context, id int64) (bool, error)
}

// MessageStore is the chat history store. Records are append-only.
type MessageStore interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	// ListMessagesByUser returns a user's history, newest first.
	ListMessagesByUser(ctx context.Context, userID int64) ([]*models.Message, error)
}

// Storage combines all persistence operations.
type Storage interface {
	UserStore
	FileStore
	MessageStore

	// Stats
	CountUsers(ctx context.Context) (int64, error)
	CountFiles(ctx context.Context) (int64, error)
	CountIngestedFiles(ctx context.Context) (int64, error)
	CountMessages(ctx context.Context) (int64, error)

	Close() error
}
