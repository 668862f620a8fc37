package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSession, int, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ClassSession, error)
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
	Create(ctx context.Context, session *models.ClassSession) error
	Update(ctx context.Context, session *models.ClassSession) error
}

// CreateSessionRequest holds payload for logging a class.
type CreateSessionRequest struct {
	Date            *time.Time `json:"date"`
	DurationMinutes int        `json:"duration_minutes" validate:"required,gt=0"`
	Summary         string     `json:"summary"`
	StudentIDs      []string   `json:"student_ids" validate:"required,min=1,dive,required"`
	Status          string     `json:"status"`
	IsPaid          bool       `json:"is_paid"`
}

// UpdateSessionRequest holds a partial session edit; nil fields are unchanged.
// The student list is fixed at creation time.
type UpdateSessionRequest struct {
	Date            *time.Time `json:"date"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gt=0"`
	Summary         *string    `json:"summary"`
	Status          *string    `json:"status"`
	IsPaid          *bool      `json:"is_paid"`
}

// SessionService handles class session use-cases. Every successful create or
// update re-runs balance recalculation for each student on the session. The
// session write and the derived-field writes are separate statements: if a
// recalculation fails the session row stays committed and the affected
// student's numbers remain stale until the next triggering mutation.
type SessionService struct {
	repo      sessionRepository
	billing   *BillingService
	stats     *StatsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(repo sessionRepository, billing *BillingService, stats *StatsService, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, billing: billing, stats: stats, validator: validate, logger: logger}
}

// List returns sessions and pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.ClassSession, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return sessions, pagination, nil
}

// ListByStudent returns every session referencing one student.
func (s *SessionService) ListByStudent(ctx context.Context, studentID string) ([]models.ClassSession, error) {
	sessions, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions for student")
	}
	return sessions, nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.ClassSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// Create logs a class and recalculates every referenced student's balance.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*models.ClassSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	status := req.Status
	if status == "" {
		status = models.SessionStatusCompleted
	}
	session := &models.ClassSession{
		DurationMinutes: req.DurationMinutes,
		Summary:         req.Summary,
		StudentIDs:      req.StudentIDs,
		Status:          status,
		IsPaid:          req.IsPaid,
	}
	if req.Date != nil {
		session.Date = *req.Date
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.stats.Invalidate(ctx)
	if err := s.billing.RecalculateAll(ctx, session.StudentIDs); err != nil {
		return nil, err
	}
	return session, nil
}

// Update applies a partial edit to a session and recalculates every referenced
// student's balance, covering duration edits and paid-status flips alike.
func (s *SessionService) Update(ctx context.Context, id string, req UpdateSessionRequest) (*models.ClassSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Date != nil {
		session.Date = *req.Date
	}
	if req.DurationMinutes != nil {
		session.DurationMinutes = *req.DurationMinutes
	}
	if req.Summary != nil {
		session.Summary = *req.Summary
	}
	if req.Status != nil {
		session.Status = *req.Status
	}
	if req.IsPaid != nil {
		session.IsPaid = *req.IsPaid
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	s.stats.Invalidate(ctx)
	if err := s.billing.RecalculateAll(ctx, session.StudentIDs); err != nil {
		return nil, err
	}
	return session, nil
}
