package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
	"github.com/tutortrack/tutortrack-api/pkg/mail"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []mail.Message
	ch       chan mail.Message
}

func newRecordingSender() *recordingSender {
	return &recordingSender{ch: make(chan mail.Message, 16)}
}

func (r *recordingSender) Send(ctx context.Context, msg mail.Message) error {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
	r.ch <- msg
	return nil
}

func (r *recordingSender) wait(t *testing.T, n int) []mail.Message {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d of %d", i+1, n)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]mail.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

func newNotifyFixture(t *testing.T, students map[string]models.Student, sessions map[string]models.ClassSession) (*NotificationService, *recordingSender) {
	t.Helper()
	sender := newRecordingSender()
	svc := NewNotificationService(
		&mockBillingStudentRepo{students: students},
		&mockSessionRepo{sessions: sessions},
		sender,
		validator.New(),
		zap.NewNop(),
		1, 1,
	)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc, sender
}

func TestNotifyClassSummary(t *testing.T) {
	students := map[string]models.Student{
		"s1": {ID: "s1", Name: "Ana", ParentName: "Maria", ParentEmail: "maria@example.com"},
		"s2": {ID: "s2", Name: "Ben", ParentName: "Noor", ParentEmail: "noor@example.com"},
	}
	sessions := map[string]models.ClassSession{
		"c1": {ID: "c1", Date: time.Date(2024, 3, 11, 16, 0, 0, 0, time.UTC), DurationMinutes: 60, Summary: "Fractions", StudentIDs: []string{"s1", "s2"}},
	}
	svc, sender := newNotifyFixture(t, students, sessions)

	result, err := svc.ClassSummary(context.Background(), ClassSummaryRequest{SessionID: "c1", Note: "Homework due Friday"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Queued)

	messages := sender.wait(t, 2)
	require.Len(t, messages, 2)
	assert.Contains(t, messages[0].TextBody, "Fractions")
	assert.Contains(t, messages[0].TextBody, "Homework due Friday")
}

func TestNotifyClassSummarySkipsDanglingAndMissingEmail(t *testing.T) {
	students := map[string]models.Student{
		"s1": {ID: "s1", Name: "Ana", ParentEmail: "maria@example.com"},
		"s2": {ID: "s2", Name: "Ben"}, // no parent email
	}
	sessions := map[string]models.ClassSession{
		"c1": {ID: "c1", Date: time.Now(), DurationMinutes: 45, StudentIDs: []string{"s1", "s2", "ghost"}},
	}
	svc, sender := newNotifyFixture(t, students, sessions)

	result, err := svc.ClassSummary(context.Background(), ClassSummaryRequest{SessionID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Queued)

	messages := sender.wait(t, 1)
	require.Len(t, messages, 1)
	assert.Equal(t, "maria@example.com", messages[0].To[0].Address)
}

func TestNotifyClassSummarySessionNotFound(t *testing.T) {
	svc, _ := newNotifyFixture(t, nil, nil)

	_, err := svc.ClassSummary(context.Background(), ClassSummaryRequest{SessionID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestNotifyPaymentReminder(t *testing.T) {
	students := map[string]models.Student{
		"s1": {ID: "s1", Name: "Ana", ParentName: "Maria", ParentEmail: "maria@example.com", Balance: 150},
	}
	svc, sender := newNotifyFixture(t, students, nil)

	result, err := svc.PaymentReminder(context.Background(), PaymentReminderRequest{StudentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Queued)

	messages := sender.wait(t, 1)
	assert.Contains(t, messages[0].TextBody, "150")
	assert.Contains(t, messages[0].Subject, "Ana")
}

func TestNotifyPaymentReminderNoParentEmail(t *testing.T) {
	students := map[string]models.Student{"s1": {ID: "s1", Name: "Ana"}}
	svc, _ := newNotifyFixture(t, students, nil)

	_, err := svc.PaymentReminder(context.Background(), PaymentReminderRequest{StudentID: "s1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNotifyPaymentReminderStudentNotFound(t *testing.T) {
	svc, _ := newNotifyFixture(t, nil, nil)

	_, err := svc.PaymentReminder(context.Background(), PaymentReminderRequest{StudentID: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestNotifyCustomMessage(t *testing.T) {
	students := map[string]models.Student{
		"s1": {ID: "s1", Name: "Ana", ParentEmail: "maria@example.com"},
	}
	svc, sender := newNotifyFixture(t, students, nil)

	result, err := svc.Custom(context.Background(), CustomMessageRequest{
		StudentID: "s1",
		Subject:   "Schedule change",
		Message:   "Next week we move to Tuesday.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Queued)

	messages := sender.wait(t, 1)
	assert.Equal(t, "Schedule change", messages[0].Subject)
}

func TestNotifyCustomMessageValidation(t *testing.T) {
	svc, _ := newNotifyFixture(t, nil, nil)

	_, err := svc.Custom(context.Background(), CustomMessageRequest{StudentID: "s1"})
	require.Error(t, err)
}
