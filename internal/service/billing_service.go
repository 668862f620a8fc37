package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
)

type billingStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateDerived(ctx context.Context, id string, balance, totalPaid int) error
}

type billingSessionRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ClassSession, error)
}

// BillingService keeps each student's derived balance and total_paid columns
// consistent with the class sessions referencing them. The columns behave like
// a materialized view: recomputed from scratch on every session create/update,
// never incrementally patched. Editing a student's hourly rate does NOT trigger
// recomputation; rate changes apply from the next session mutation onward.
type BillingService struct {
	students billingStudentRepository
	sessions billingSessionRepository
	logger   *zap.Logger
}

// NewBillingService constructs the billing service.
func NewBillingService(students billingStudentRepository, sessions billingSessionRepository, logger *zap.Logger) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{students: students, sessions: sessions, logger: logger}
}

// Recalculate recomputes and persists the derived fields for one student.
// A missing student is a silent no-op: there is nothing to reconcile, and the
// id may legitimately be a dangling reference left by a deleted student.
func (s *BillingService) Recalculate(ctx context.Context, studentID string) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("recalculate skipped, student not found", zap.String("student_id", studentID))
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student for recalculation")
	}

	sessions, err := s.sessions.ListByStudent(ctx, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions for recalculation")
	}

	var owed, collected float64
	for _, session := range sessions {
		amount := SessionRevenue(student.HourlyRate, session.DurationMinutes)
		if session.IsPaid {
			collected += amount
		} else {
			owed += amount
		}
	}

	balance := RoundAmount(owed)
	totalPaid := RoundAmount(collected)

	if err := s.students.UpdateDerived(ctx, studentID, balance, totalPaid); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist recalculated balance")
	}

	s.logger.Debug("balance recalculated",
		zap.String("student_id", studentID),
		zap.Int("balance", balance),
		zap.Int("total_paid", totalPaid),
		zap.Int("sessions", len(sessions)),
	)
	return nil
}

// RecalculateAll runs Recalculate for each distinct student id in the list,
// preserving first-seen order. Used after session mutations, where the same
// student may appear once per group session.
func (s *BillingService) RecalculateAll(ctx context.Context, studentIDs []string) error {
	seen := make(map[string]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if err := s.Recalculate(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
