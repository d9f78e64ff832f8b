package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/tanya/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "db", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createUser(t *testing.T, store *SQLiteStorage, username string) *models.User {
	t.Helper()
	viewer, err := store.GetRoleByName(context.Background(), models.RoleViewer)
	require.NoError(t, err)
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		RoleID:       &viewer.ID,
		IsActive:     true,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func TestSQLiteStorage_seedsRoles(t *testing.T) {
	store := newTestStorage(t)
	roles, err := store.ListRoles(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{models.RoleAdmin, models.RoleEditor, models.RoleViewer}, names)
}

func TestSQLiteStorage_reopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	u := createUser(t, store, "ada")
	require.NoError(t, store.Close())

	store, err = NewSQLiteStorage(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.GetUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)
	roles, err := store.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 3, "seeding must not duplicate roles")
}

func TestSQLiteStorage_users(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	u := createUser(t, store, "ada")
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, models.RoleViewer, u.RoleName)

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, models.RoleViewer, got.RoleName)
	assert.True(t, got.IsActive)

	ok, err := store.UsernameExists(ctx, "ada")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.EmailExists(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	dup := &models.User{Username: "ada", Email: "other@example.com", PasswordHash: "x"}
	err = store.CreateUser(ctx, dup)
	assert.True(t, errors.Is(err, ErrConflict), "got %v", err)

	_, err = store.GetUser(ctx, 999)
	assert.True(t, errors.Is(err, ErrNotFound))

	createUser(t, store, "grace")
	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestSQLiteStorage_updateUserRole(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	u := createUser(t, store, "ada")

	admin, err := store.GetRoleByName(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, store.UpdateUserRole(ctx, u.ID, admin.ID))

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.RoleName)

	assert.True(t, errors.Is(store.UpdateUserRole(ctx, u.ID, 999), ErrNotFound))
	assert.True(t, errors.Is(store.UpdateUserRole(ctx, 999, admin.ID), ErrNotFound))
}

func TestSQLiteStorage_roles(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	r, err := store.CreateRole(ctx, "auditor")
	require.NoError(t, err)
	assert.NotZero(t, r.ID)

	_, err = store.CreateRole(ctx, "auditor")
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = store.GetRoleByName(ctx, "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteStorage_files(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	u := createUser(t, store, "ada")

	f := &models.File{UserID: u.ID, Path: "/tmp/x.pdf", OriginalName: "x.pdf", Caption: "guidelines", Size: 10}
	require.NoError(t, store.CreateFile(ctx, f))
	assert.NotZero(t, f.ID)
	assert.False(t, f.Ingested)

	changed, err := store.MarkFileIngested(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.MarkFileIngested(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, changed, "ingested flag transitions once")

	got, err := store.GetFile(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, got.Ingested)
	require.NotNil(t, got.IngestedAt)
	assert.Equal(t, "guidelines", got.Caption)

	_, err = store.MarkFileIngested(ctx, 999)
	assert.True(t, errors.Is(err, ErrNotFound))

	files, err := store.ListFilesByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	n, err := store.CountIngestedFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLiteStorage_messagesNewestFirst(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	u := createUser(t, store, "ada")
	other := createUser(t, store, "grace")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msgs := []*models.Message{
		{UserID: u.ID, Question: "q1", Answer: "a1", CreatedAt: base},
		{UserID: u.ID, Question: "q3", Answer: "a3", CreatedAt: base.Add(2 * time.Minute)},
		{UserID: u.ID, Question: "q2", Answer: "a2", CreatedAt: base.Add(time.Minute)},
		{UserID: u.ID, Question: "q4", Answer: "a4", CreatedAt: base.Add(2 * time.Minute)},
		{UserID: other.ID, Question: "other", Answer: "x", CreatedAt: base},
	}
	for _, m := range msgs {
		require.NoError(t, store.CreateMessage(ctx, m))
	}

	got, err := store.ListMessagesByUser(ctx, u.ID)
	require.NoError(t, err)
	var questions []string
	for _, m := range got {
		questions = append(questions, m.Question)
	}
	assert.Equal(t, []string{"q4", "q3", "q2", "q1"}, questions)

	empty, err := store.ListMessagesByUser(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	n, err := store.CountMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
