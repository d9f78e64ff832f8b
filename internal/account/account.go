// Package account registers users and manages their roles.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/hyperjump/tanya/internal/apperr"
	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const opAccount = "account"

// Service wraps a UserStore with validation and password hashing.
type Service struct {
	users    storage.UserStore
	hashCost int
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// NewService returns an account service backed by users.
func NewService(users storage.UserStore, opts ...Option) *Service {
	s := &Service{users: users, hashCost: bcrypt.DefaultCost, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a user with the viewer role.
func (s *Service) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.New(apperr.KindValidation, opAccount, "All fields are required.")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperr.New(apperr.KindValidation, opAccount, "Enter a valid email address.")
	}
	if taken, err := s.users.UsernameExists(ctx, in.Username); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, opAccount, err)
	} else if taken {
		return nil, apperr.New(apperr.KindConflict, opAccount, "Username already exists.")
	}
	if taken, err := s.users.EmailExists(ctx, in.Email); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, opAccount, err)
	} else if taken {
		return nil, apperr.New(apperr.KindConflict, opAccount, "Email already exists.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperr.WrapMsg(apperr.KindValidation, opAccount, "hash password", err)
	}
	role, err := s.users.GetRoleByName(ctx, models.RoleViewer)
	if err != nil {
		return nil, apperr.WrapMsg(apperr.KindInternal, opAccount, "default role", err)
	}

	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		RoleID:       &role.ID,
		RoleName:     role.Name,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.New(apperr.KindConflict, opAccount, "Username or email already exists.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, opAccount, err)
	}
	s.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// GetUser returns a user with its role name.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found.")
	}
	return u, nil
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, opAccount, err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// UpdateUserRole assigns a role and returns the updated user.
func (s *Service) UpdateUserRole(ctx context.Context, userID, roleID int64) (*models.User, error) {
	if roleID <= 0 {
		return nil, apperr.New(apperr.KindValidation, opAccount, "role_id is required")
	}
	if _, err := s.users.GetRole(ctx, roleID); err != nil {
		return nil, notFound(err, "Role not found.")
	}
	if err := s.users.UpdateUserRole(ctx, userID, roleID); err != nil {
		return nil, notFound(err, "User not found.")
	}
	return s.GetUser(ctx, userID)
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.users.ListRoles(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, opAccount, err)
	}
	if roles == nil {
		roles = []*models.Role{}
	}
	return roles, nil
}

// CreateRole adds a role. Names are unique.
func (s *Service) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.KindValidation, opAccount, "Role name is required.")
	}
	r, err := s.users.CreateRole(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.New(apperr.KindConflict, opAccount, fmt.Sprintf("Role %q already exists.", name))
		}
		return nil, apperr.Wrap(apperr.KindInternal, opAccount, err)
	}
	return r, nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, opAccount, msg)
	}
	return apperr.Wrap(apperr.KindInternal, opAccount, err)
}
