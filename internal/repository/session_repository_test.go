package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutortrack/tutortrack-api/internal/models"
)

func newSessionMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "date", "duration_minutes", "summary", "student_ids", "status", "is_paid", "created_at", "updated_at"}).
		AddRow("c1", time.Now(), 60, "Fractions", pq.StringArray{"s1"}, "completed", false, time.Now(), time.Now())
}

func TestSessionRepositoryList(t *testing.T) {
	db, mock, cleanup := newSessionMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery("SELECT id, date").WillReturnRows(sessionRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(id) FROM class_sessions WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	sessions, total, err := repo.List(context.Background(), models.SessionFilter{})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newSessionMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	unpaid := false
	mock.ExpectQuery("SELECT id, date").
		WithArgs("s1", false).
		WillReturnRows(sessionRows())
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("s1", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	sessions, _, err := repo.List(context.Background(), models.SessionFilter{StudentID: "s1", IsPaid: &unpaid})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newSessionMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE $1 = ANY(student_ids) ORDER BY date ASC")).
		WithArgs("s1").
		WillReturnRows(sessionRows())

	sessions, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, pq.StringArray{"s1"}, sessions[0].StudentIDs)
}

func TestSessionRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newSessionMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery("SELECT id, date").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSessionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSessionMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO class_sessions").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.ClassSession{DurationMinutes: 60, StudentIDs: pq.StringArray{"s1"}, Status: models.SessionStatusCompleted}
	err := repo.Create(context.Background(), session)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.Date.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newSessionMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("UPDATE class_sessions SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	session := &models.ClassSession{ID: "c1", Date: time.Now(), DurationMinutes: 90, StudentIDs: pq.StringArray{"s1"}, Status: "completed", IsPaid: true}
	require.NoError(t, repo.Update(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}
