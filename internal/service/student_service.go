package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest holds payload for adding a student.
type CreateStudentRequest struct {
	Name        string `json:"name" validate:"required"`
	Grade       string `json:"grade"`
	ParentName  string `json:"parent_name"`
	ParentEmail string `json:"parent_email" validate:"omitempty,email"`
	ParentPhone string `json:"parent_phone"`
	HourlyRate  *int   `json:"hourly_rate" validate:"omitempty,gt=0"`
}

// UpdateStudentRequest holds a partial update; nil fields are left unchanged.
// Balance and total paid are not accepted here under any circumstances.
type UpdateStudentRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Grade       *string `json:"grade"`
	ParentName  *string `json:"parent_name"`
	ParentEmail *string `json:"parent_email" validate:"omitempty,email"`
	ParentPhone *string `json:"parent_phone"`
	HourlyRate  *int    `json:"hourly_rate" validate:"omitempty,gt=0"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	stats     *StatsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, stats *StatsService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, stats: stats, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student. Derived fields start at zero.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	rate := models.DefaultHourlyRate
	if req.HourlyRate != nil {
		rate = *req.HourlyRate
	}
	student := &models.Student{
		Name:        req.Name,
		Grade:       req.Grade,
		ParentName:  req.ParentName,
		ParentEmail: req.ParentEmail,
		ParentPhone: req.ParentPhone,
		HourlyRate:  rate,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.stats.Invalidate(ctx)
	return student, nil
}

// Update applies a partial edit to a student record. Changing the hourly rate
// does not recompute balances for already-logged sessions; the new rate takes
// effect on the next session mutation.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Grade != nil {
		student.Grade = *req.Grade
	}
	if req.ParentName != nil {
		student.ParentName = *req.ParentName
	}
	if req.ParentEmail != nil {
		student.ParentEmail = *req.ParentEmail
	}
	if req.ParentPhone != nil {
		student.ParentPhone = *req.ParentPhone
	}
	if req.HourlyRate != nil {
		student.HourlyRate = *req.HourlyRate
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.stats.Invalidate(ctx)
	return student, nil
}

// Delete removes a student. Class sessions referencing the id are kept as-is;
// revenue attribution for those ids silently drops to zero.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.stats.Invalidate(ctx)
	return nil
}
