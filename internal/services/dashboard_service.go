package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/models"
)

// DashboardStats is the admin overview snapshot.
type DashboardStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	VerifiedUsers  int64 `json:"verifiedUsers"`
	BannedUsers    int64 `json:"bannedUsers"`
	TotalMovies    int64 `json:"totalMovies"`
	TotalViews     int64 `json:"totalViews"`
	PendingReports int64 `json:"pendingReports"`
	ActiveSessions int64 `json:"activeSessions"`
}

// DashboardService aggregates counters for the admin landing page.
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// DashboardOption customises the DashboardService.
type DashboardOption func(*DashboardService)

// WithDashboardClock injects the time source.
func WithDashboardClock(now func() time.Time) DashboardOption {
	return func(s *DashboardService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDashboardService constructs the stats aggregator.
func NewDashboardService(db *gorm.DB, opts ...DashboardOption) (*DashboardService, error) {
	if db == nil {
		return nil, errors.New("dashboard service: db is required")
	}

	s := &DashboardService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Stats gathers the dashboard counters.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	ctx = ensureContext(ctx)
	stats := &DashboardStats{}

	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&stats.TotalUsers).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard service: user count: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("is_verified = ?", true).Count(&stats.VerifiedUsers).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard service: verified count: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("banned = ?", true).Count(&stats.BannedUsers).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard service: banned count: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.Movie{}).
		Where("status = ?", models.MovieStatusActive).Count(&stats.TotalMovies).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard service: movie count: %w", err)
	}

	var views struct{ Total int64 }
	err = s.db.WithContext(ctx).Model(&models.Movie{}).
		Select("COALESCE(SUM(views), 0) AS total").Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard service: view sum: %w", err)
	}
	stats.TotalViews = views.Total

	err = s.db.WithContext(ctx).Model(&models.Report{}).
		Where("status = ?", models.ReportStatusPending).Count(&stats.PendingReports).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard service: pending reports: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.Session{}).
		Where("expires_at > ?", s.now()).Count(&stats.ActiveSessions).Error
	if err != nil {
		return nil, fmt.Errorf("dashboard service: session count: %w", err)
	}

	return stats, nil
}
