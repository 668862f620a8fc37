package models

import (
	"time"

	"github.com/lib/pq"
)

// SessionStatusCompleted is the default status for a logged class.
const SessionStatusCompleted = "completed"

// ClassSession represents one tutoring session stored in the class_sessions table.
// StudentIDs are weak references: a listed id may point at a deleted student and
// readers must tolerate the miss. The first id is the primary display student.
type ClassSession struct {
	ID              string         `db:"id" json:"id"`
	Date            time.Time      `db:"date" json:"date"`
	DurationMinutes int            `db:"duration_minutes" json:"duration_minutes"`
	Summary         string         `db:"summary" json:"summary"`
	StudentIDs      pq.StringArray `db:"student_ids" json:"student_ids"`
	Status          string         `db:"status" json:"status"`
	IsPaid          bool           `db:"is_paid" json:"is_paid"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// SessionFilter captures filtering criteria for listing class sessions.
type SessionFilter struct {
	StudentID string
	IsPaid    *bool
	Page      int
	PageSize  int
}
