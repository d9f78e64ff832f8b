package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hyperjump/tanya/internal/models"
)

const userColumns = `u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name,
	u.role_id, COALESCE(r.name, ''), u.is_active, u.created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var roleID sql.NullInt64
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&roleID, &u.RoleName, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	if roleID.Valid {
		id := roleID.Int64
		u.RoleID = &id
	}
	return &u, nil
}

// CreateUser inserts u and sets its ID and CreatedAt. A taken username or email yields ErrConflict.
func (s *SQLiteStorage) CreateUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, role_id, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.RoleID, u.IsActive, u.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", u.Username, ErrConflict)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	if u.RoleID != nil && u.RoleName == "" {
		if role, err := s.GetRole(ctx, *u.RoleID); err == nil {
			u.RoleName = role.Name
		}
	}
	return nil
}

// GetUser returns a user with its role name.
func (s *SQLiteStorage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u LEFT JOIN roles r ON r.id = u.role_id WHERE u.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, err
}

func (s *SQLiteStorage) exists(ctx context.Context, query string, arg any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UsernameExists reports whether username is taken.
func (s *SQLiteStorage) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM users WHERE username = ?", username)
}

// EmailExists reports whether email is taken.
func (s *SQLiteStorage) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM users WHERE email = ?", email)
}

// ListUsers returns all users ordered by id.
func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users u LEFT JOIN roles r ON r.id = u.role_id ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserRole assigns roleID to userID. Either record missing yields ErrNotFound.
func (s *SQLiteStorage) UpdateUserRole(ctx context.Context, userID, roleID int64) error {
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "UPDATE users SET role_id = ? WHERE id = ?", roleID, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}

// CreateRole inserts a role. A taken name yields ErrConflict.
func (s *SQLiteStorage) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO roles (name) VALUES (?)", name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("role %s: %w", name, ErrConflict)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Role{ID: id, Name: name}, nil
}

// GetRole returns a role by ID.
func (s *SQLiteStorage) GetRole(ctx context.Context, id int64) (*models.Role, error) {
	var r models.Role
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM roles WHERE id = ?", id).Scan(&r.ID, &r.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("role %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRoleByName returns a role by name.
func (s *SQLiteStorage) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var r models.Role
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM roles WHERE name = ?", name).Scan(&r.ID, &r.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("role %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRoles returns all roles ordered by id.
func (s *SQLiteStorage) ListRoles(ctx context.Context) ([]*models.Role, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM roles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		var r models.Role
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, err
		}
		roles = append(roles, &r)
	}
	return roles, rows.Err()
}
