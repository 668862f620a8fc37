package models

import "time"

// DefaultHourlyRate is applied when a student is created without an explicit rate.
const DefaultHourlyRate = 50

// Student represents a tutored student stored in the students table.
// Balance and TotalPaid are derived fields owned by the billing service;
// clients can never set them directly.
type Student struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Grade       string    `db:"grade" json:"grade"`
	ParentName  string    `db:"parent_name" json:"parent_name"`
	ParentEmail string    `db:"parent_email" json:"parent_email"`
	ParentPhone string    `db:"parent_phone" json:"parent_phone"`
	HourlyRate  int       `db:"hourly_rate" json:"hourly_rate"`
	Balance     int       `db:"balance" json:"balance"`
	TotalPaid   int       `db:"total_paid" json:"total_paid"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
