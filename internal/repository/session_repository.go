package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutortrack/tutortrack-api/internal/models"
)

const sessionColumns = "id, date, duration_minutes, summary, student_ids, status, is_paid, created_at, updated_at"

// SessionRepository manages persistence for class session records.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns class sessions matching the provided filters, newest first.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSession, int, error) {
	base := "FROM class_sessions"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(student_ids)", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.IsPaid != nil {
		conditions = append(conditions, fmt.Sprintf("is_paid = $%d", len(args)+1))
		args = append(args, *filter.IsPaid)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY date DESC LIMIT %d OFFSET %d", sessionColumns, base, size, offset)

	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(id) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

// ListAll returns every session without pagination, for aggregate computations.
func (r *SessionRepository) ListAll(ctx context.Context) ([]models.ClassSession, error) {
	query := fmt.Sprintf("SELECT %s FROM class_sessions ORDER BY date DESC", sessionColumns)
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list all sessions: %w", err)
	}
	return sessions, nil
}

// ListByStudent returns all sessions referencing the student, oldest first.
// Ordering does not affect balance arithmetic but keeps recalculation runs
// deterministic when debugging.
func (r *SessionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ClassSession, error) {
	query := fmt.Sprintf("SELECT %s FROM class_sessions WHERE $1 = ANY(student_ids) ORDER BY date ASC", sessionColumns)
	var sessions []models.ClassSession
	if err := r.db.SelectContext(ctx, &sessions, query, studentID); err != nil {
		return nil, fmt.Errorf("list sessions for student: %w", err)
	}
	return sessions, nil
}

// FindByID fetches a session by ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	query := fmt.Sprintf("SELECT %s FROM class_sessions WHERE id = $1", sessionColumns)
	var session models.ClassSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create inserts a new class session record.
func (r *SessionRepository) Create(ctx context.Context, session *models.ClassSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.Date.IsZero() {
		session.Date = now
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	const query = `INSERT INTO class_sessions (id, date, duration_minutes, summary, student_ids, status, is_paid, created_at, updated_at)
        VALUES (:id, :date, :duration_minutes, :summary, :student_ids, :status, :is_paid, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update modifies an existing class session.
func (r *SessionRepository) Update(ctx context.Context, session *models.ClassSession) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_sessions SET date = :date, duration_minutes = :duration_minutes, summary = :summary, student_ids = :student_ids, status = :status, is_paid = :is_paid, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}
