package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkmate/bunkmate-api/internal/models"
)

var subjectColumns = []string{"id", "user_id", "name", "total_classes", "attended_classes", "created_at", "updated_at"}

func TestSubjectListByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(subjectColumns).
		AddRow("s1", "u1", "Maths", 20, 15, now, now).
		AddRow("s2", "u1", "Physics", 20, 14, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, total_classes, attended_classes, created_at, updated_at FROM subjects WHERE user_id = $1 ORDER BY created_at ASC")).
		WithArgs("u1").
		WillReturnRows(rows)

	subjects, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "Maths", subjects[0].Name)
	assert.Equal(t, 15, subjects[0].Attended)
	assert.Equal(t, 20, subjects[0].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectListAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(subjectColumns).
		AddRow("s1", "u1", "Maths", 20, 15, now, now).
		AddRow("s2", "u2", "Maths", 10, 9, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, name, total_classes, attended_classes, created_at, updated_at FROM subjects ORDER BY created_at ASC")).
		WillReturnRows(rows)

	subjects, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "u2", subjects[1].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("SELECT .* FROM subjects WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSubjectCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").WillReturnResult(sqlmock.NewResult(1, 1))

	subject := &models.Subject{UserID: "u1", Name: "Maths", Total: 20, Attended: 15}
	require.NoError(t, repo.Create(context.Background(), subject))
	assert.NotEmpty(t, subject.ID)
	assert.False(t, subject.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("UPDATE subjects SET").WillReturnResult(sqlmock.NewResult(0, 1))

	subject := &models.Subject{ID: "s1", UserID: "u1", Name: "Maths", Total: 21, Attended: 15}
	require.NoError(t, repo.Update(context.Background(), subject))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subjects WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
