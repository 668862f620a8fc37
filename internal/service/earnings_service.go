package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
	"github.com/tutortrack/tutortrack-api/pkg/export"
)

// EarningsService computes the full-history earnings breakdown and renders it
// for export. Unlike the dashboard stats it ignores calendar windows: every
// session ever logged participates.
type EarningsService struct {
	students statsStudentLister
	sessions statsSessionLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	xlsx     *export.XLSXExporter
	logger   *zap.Logger
}

// NewEarningsService constructs the earnings service.
func NewEarningsService(students statsStudentLister, sessions statsSessionLister, logger *zap.Logger) *EarningsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EarningsService{
		students: students,
		sessions: sessions,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		xlsx:     export.NewXLSXExporter(),
		logger:   logger,
	}
}

// Breakdown returns lifetime earned/collected/outstanding totals.
func (s *EarningsService) Breakdown(ctx context.Context) (*models.EarningsBreakdown, error) {
	students, sessions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeEarnings(students, sessions), nil
}

// ComputeEarnings is the pure full-history rollup. It shares the per-session
// revenue formula with balance recalculation and monthly stats, and rounds
// each aggregate once.
func ComputeEarnings(students []models.Student, sessions []models.ClassSession) *models.EarningsBreakdown {
	rates := rateIndex(students)

	var earned, collected, outstanding float64
	for _, session := range sessions {
		for _, studentID := range session.StudentIDs {
			rate, ok := rates[studentID]
			if !ok {
				continue
			}
			amount := SessionRevenue(rate, session.DurationMinutes)
			earned += amount
			if session.IsPaid {
				collected += amount
			} else {
				outstanding += amount
			}
		}
	}

	return &models.EarningsBreakdown{
		TotalEarned:      RoundAmount(earned),
		TotalCollected:   RoundAmount(collected),
		TotalOutstanding: RoundAmount(outstanding),
	}
}

// ExportResult carries a rendered earnings report.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export renders a per-student earnings report in the requested format
// (csv, pdf or xlsx).
func (s *EarningsService) Export(ctx context.Context, format string) (*ExportResult, error) {
	students, sessions, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	dataset := earningsDataset(students, sessions)

	switch format {
	case "csv", "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "earnings.csv"}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "Earnings Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "earnings.pdf"}, nil
	case "xlsx":
		content, err := s.xlsx.Render(dataset, "Earnings")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    "earnings.xlsx",
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *EarningsService) load(ctx context.Context) ([]models.Student, []models.ClassSession, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students for earnings")
	}
	sessions, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions for earnings")
	}
	return students, sessions, nil
}

// earningsDataset builds one row per student with lifetime figures, ordered by
// name for stable output.
func earningsDataset(students []models.Student, sessions []models.ClassSession) export.Dataset {
	type studentTotals struct {
		classes           int
		earned, collected float64
	}
	totals := make(map[string]*studentTotals, len(students))
	for _, student := range students {
		totals[student.ID] = &studentTotals{}
	}

	rates := rateIndex(students)
	for _, session := range sessions {
		for _, studentID := range session.StudentIDs {
			t, ok := totals[studentID]
			if !ok {
				continue
			}
			amount := SessionRevenue(rates[studentID], session.DurationMinutes)
			t.classes++
			t.earned += amount
			if session.IsPaid {
				t.collected += amount
			}
		}
	}

	ordered := make([]models.Student, len(students))
	copy(ordered, students)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Name < ordered[j].Name })

	headers := []string{"Student", "Classes", "Hourly Rate", "Total Earned", "Collected", "Outstanding"}
	rows := make([]map[string]string, 0, len(ordered))
	for _, student := range ordered {
		t := totals[student.ID]
		earned := RoundAmount(t.earned)
		collected := RoundAmount(t.collected)
		rows = append(rows, map[string]string{
			"Student":      student.Name,
			"Classes":      strconv.Itoa(t.classes),
			"Hourly Rate":  strconv.Itoa(student.HourlyRate),
			"Total Earned": strconv.Itoa(earned),
			"Collected":    strconv.Itoa(collected),
			"Outstanding":  strconv.Itoa(earned - collected),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
