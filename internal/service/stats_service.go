package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
)

const statsCacheKey = "stats:dashboard"

type statsStudentLister interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type statsSessionLister interface {
	ListAll(ctx context.Context) ([]models.ClassSession, error)
}

// StatsService computes the dashboard rollup from full snapshots of students
// and sessions. The computation itself is pure; the service layers a short-TTL
// cache on top and relies on mutation paths calling Invalidate.
type StatsService struct {
	students statsStudentLister
	sessions statsSessionLister
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewStatsService constructs the stats service.
func NewStatsService(students statsStudentLister, sessions statsSessionLister, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &StatsService{
		students: students,
		sessions: sessions,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Compute returns dashboard stats, serving from cache when possible.
// The bool result reports whether the cache was hit.
func (s *StatsService) Compute(ctx context.Context) (*models.DashboardStats, bool, error) {
	var cached models.DashboardStats
	if hit, err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students for stats")
	}
	sessions, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions for stats")
	}

	stats := ComputeStats(s.now(), students, sessions)

	if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache stats", zap.Error(err))
	}
	return stats, false, nil
}

// Invalidate drops the cached stats payload. Called after any student or
// session mutation.
func (s *StatsService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}

// ComputeStats is the pure rollup over in-memory snapshots.
//
// Window semantics: a session is "this week" when its date falls on or after
// the most recent Sunday at 00:00 local time, and "this month" when it falls on
// or after the first instant of now's calendar month. unpaidCount counts every
// unpaid session regardless of date. Session student ids with no matching
// student (deleted) contribute zero revenue silently.
func ComputeStats(now time.Time, students []models.Student, sessions []models.ClassSession) *models.DashboardStats {
	weekStart := startOfWeek(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	rates := rateIndex(students)

	stats := &models.DashboardStats{TotalStudents: len(students)}

	var monthRevenue float64
	for _, session := range sessions {
		date := session.Date.In(now.Location())
		if !date.Before(weekStart) {
			stats.ClassesThisWeek++
		}
		if !session.IsPaid {
			stats.UnpaidCount++
		}
		if !date.Before(monthStart) {
			for _, studentID := range session.StudentIDs {
				if rate, ok := rates[studentID]; ok {
					monthRevenue += SessionRevenue(rate, session.DurationMinutes)
				}
			}
		}
	}
	stats.RevenueThisMonth = RoundAmount(monthRevenue)
	return stats
}

// startOfWeek clamps now to the most recent Sunday at midnight, local time.
func startOfWeek(now time.Time) time.Time {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dayStart.AddDate(0, 0, -int(now.Weekday()))
}
