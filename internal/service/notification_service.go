package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
	"github.com/tutortrack/tutortrack-api/pkg/jobs"
	"github.com/tutortrack/tutortrack-api/pkg/mail"
)

type notifyStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type notifySessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
}

// ClassSummaryRequest triggers a summary email to every parent on a session.
type ClassSummaryRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Note      string `json:"note"`
}

// PaymentReminderRequest triggers an outstanding-balance email for one student.
type PaymentReminderRequest struct {
	StudentID string `json:"student_id" validate:"required"`
}

// CustomMessageRequest sends a free-form email to one student's parent.
type CustomMessageRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// NotifyResult reports how many emails were queued for delivery.
type NotifyResult struct {
	Queued int `json:"queued"`
}

// NotificationService composes parent-facing emails and hands them to a small
// worker queue for delivery. Sends are fire-and-forget from the caller's view:
// a 2xx response means queued, not delivered.
type NotificationService struct {
	students  notifyStudentRepository
	sessions  notifySessionRepository
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs the notification service and its queue.
func NewNotificationService(students notifyStudentRepository, sessions notifySessionRepository, sender mail.Sender, validate *validator.Validate, logger *zap.Logger, workers, retries int) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(mail.Message)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return sender.Send(ctx, msg)
	}
	queue := jobs.NewQueue("email", handler, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return &NotificationService{
		students:  students,
		sessions:  sessions,
		queue:     queue,
		validator: validate,
		logger:    logger,
	}
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains the delivery workers.
func (s *NotificationService) Stop() { s.queue.Stop() }

// ClassSummary emails a session recap to the parents of every student on the
// session. Dangling student ids are skipped silently.
func (s *NotificationService) ClassSummary(ctx context.Context, req ClassSummaryRequest) (*NotifyResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class summary payload")
	}

	session, err := s.sessions.FindByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	queued := 0
	for _, studentID := range session.StudentIDs {
		student, err := s.students.FindByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		if student.ParentEmail == "" {
			continue
		}

		body := fmt.Sprintf("Hi %s,\n\n%s had a %d-minute class on %s.\n\nSummary: %s",
			student.ParentName, student.Name, session.DurationMinutes,
			session.Date.Format("Monday, January 2"), session.Summary)
		if req.Note != "" {
			body += "\n\n" + req.Note
		}

		if err := s.enqueue(mail.Message{
			To:       []mail.Recipient{{Name: student.ParentName, Address: student.ParentEmail}},
			Subject:  fmt.Sprintf("Class summary for %s", student.Name),
			TextBody: body,
		}); err != nil {
			return nil, err
		}
		queued++
	}

	return &NotifyResult{Queued: queued}, nil
}

// PaymentReminder emails one student's parent about the outstanding balance.
func (s *NotificationService) PaymentReminder(ctx context.Context, req PaymentReminderRequest) (*NotifyResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment reminder payload")
	}

	student, err := s.loadStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if student.ParentEmail == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student has no parent email on file")
	}

	body := fmt.Sprintf("Hi %s,\n\nThis is a friendly reminder that %s has an outstanding balance of %d.\n\nThank you!",
		student.ParentName, student.Name, student.Balance)

	if err := s.enqueue(mail.Message{
		To:       []mail.Recipient{{Name: student.ParentName, Address: student.ParentEmail}},
		Subject:  fmt.Sprintf("Payment reminder for %s", student.Name),
		TextBody: body,
	}); err != nil {
		return nil, err
	}
	return &NotifyResult{Queued: 1}, nil
}

// Custom sends a free-form message to one student's parent.
func (s *NotificationService) Custom(ctx context.Context, req CustomMessageRequest) (*NotifyResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid custom message payload")
	}

	student, err := s.loadStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if student.ParentEmail == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student has no parent email on file")
	}

	if err := s.enqueue(mail.Message{
		To:       []mail.Recipient{{Name: student.ParentName, Address: student.ParentEmail}},
		Subject:  req.Subject,
		TextBody: req.Message,
	}); err != nil {
		return nil, err
	}
	return &NotifyResult{Queued: 1}, nil
}

func (s *NotificationService) loadStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func (s *NotificationService) enqueue(msg mail.Message) error {
	err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "email", Payload: msg})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue email")
	}
	return nil
}
