package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkmate/bunkmate-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var userColumns = []string{"id", "email", "password_hash", "name", "semester", "batch", "notifications_enabled", "created_at", "updated_at"}

func TestUserFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumns).
		AddRow("u1", "asha@example.com", "hash", "Asha", 4, "A", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, name, semester, batch, notifications_enabled, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("asha@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)
	assert.True(t, user.NotificationsEnabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByEmailNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .* FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "asha@example.com", PasswordHash: "hash", Name: "Asha", Semester: 4, Batch: "A", NotificationsEnabled: true}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserExistsByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateProfile(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{ID: "u1", Name: "Asha", Semester: 5, Batch: "A", NotificationsEnabled: false}
	require.NoError(t, repo.UpdateProfile(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserListFiltersByNotifications(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumns).
		AddRow("u1", "asha@example.com", "hash", "Asha", 4, "A", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, name, semester, batch, notifications_enabled, created_at, updated_at FROM users WHERE notifications_enabled = $1 ORDER BY created_at ASC")).
		WithArgs(true).
		WillReturnRows(rows)

	enabled := true
	users, err := repo.List(context.Background(), models.UserFilter{NotificationsEnabled: &enabled})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRefreshTokenLifecycle(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO refresh_tokens").WillReturnResult(sqlmock.NewResult(1, 1))
	err := repo.CreateRefreshToken(context.Background(), &models.RefreshToken{
		ID: "t1", UserID: "u1", Token: "value", ExpiresAt: time.Now(), CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at", "revoked", "revoked_at"}).
		AddRow("t1", "u1", "value", now.Add(time.Hour), now, false, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, token, expires_at, created_at, revoked, revoked_at FROM refresh_tokens WHERE token = $1 LIMIT 1")).
		WithArgs("value").
		WillReturnRows(rows)

	stored, err := repo.FindRefreshToken(context.Background(), "value")
	require.NoError(t, err)
	assert.Equal(t, "t1", stored.ID)
	assert.False(t, stored.Revoked)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RevokeRefreshToken(context.Background(), "t1", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}
