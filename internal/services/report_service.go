package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/models"
	"github.com/syriashof/shof/internal/webhook"
	apperrors "github.com/syriashof/shof/pkg/errors"
)

const maxReportLength = 2000

var reportCategories = map[string]struct{}{
	"playback":    {},
	"subtitle":    {},
	"audio":       {},
	"broken_link": {},
	"content":     {},
	"suggestion":  {},
	"other":       {},
}

var reportStatuses = map[string]struct{}{
	models.ReportStatusPending:  {},
	models.ReportStatusReviewed: {},
	models.ReportStatusResolved: {},
	models.ReportStatusRejected: {},
}

// ReportInput is what a viewer submits.
type ReportInput struct {
	MovieID     string `json:"movieId"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"required"`
	ContactInfo string `json:"contactInfo"`
}

// ReportFilter narrows admin report listings.
type ReportFilter struct {
	Status string
	Limit  int
	Offset int
}

// ReportService accepts viewer problem reports and relays them to the
// moderation channel.
type ReportService struct {
	db       *gorm.DB
	notifier *webhook.DiscordNotifier
	now      func() time.Time
}

// ReportOption customises the ReportService.
type ReportOption func(*ReportService)

// WithReportClock injects the time source.
func WithReportClock(now func() time.Time) ReportOption {
	return func(s *ReportService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewReportService constructs the report manager. The notifier may be
// nil; reports are then stored without the Discord relay.
func NewReportService(db *gorm.DB, notifier *webhook.DiscordNotifier, opts ...ReportOption) (*ReportService, error) {
	if db == nil {
		return nil, errors.New("report service: db is required")
	}

	s := &ReportService{db: db, notifier: notifier, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create stores a report and relays it to Discord in the background.
// userID may be empty for anonymous reports.
func (s *ReportService) Create(ctx context.Context, userID string, input ReportInput) (*models.Report, error) {
	ctx = ensureContext(ctx)

	if _, ok := reportCategories[input.Category]; !ok {
		return nil, apperrors.NewBadRequest("Invalid report category")
	}

	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewBadRequest("Description is required")
	}
	if len(description) > maxReportLength {
		return nil, apperrors.NewBadRequest("Description is too long")
	}

	report := &models.Report{
		Category:    input.Category,
		Description: description,
		ContactInfo: strings.TrimSpace(input.ContactInfo),
		Status:      models.ReportStatusPending,
	}
	if userID != "" {
		report.UserID = &userID
	}

	var movieTitle string
	if movieID := strings.TrimSpace(input.MovieID); movieID != "" {
		var movie models.Movie
		err := s.db.WithContext(ctx).Where("id = ?", movieID).Take(&movie).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Movie not found")
		}
		if err != nil {
			return nil, fmt.Errorf("report service: find movie: %w", err)
		}
		report.MovieID = &movie.ID
		movieTitle = movie.TitleAr
	}

	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, fmt.Errorf("report service: create report: %w", err)
	}

	if s.notifier != nil {
		s.notifier.NotifyAsync(report, movieTitle)
	}
	return report, nil
}

// List returns reports for the admin screen, newest first.
func (s *ReportService) List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Report{})
	if filter.Status != "" {
		if _, ok := reportStatuses[filter.Status]; !ok {
			return nil, 0, apperrors.NewBadRequest("Invalid report status")
		}
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("report service: count reports: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var reports []models.Report
	err := query.Order("created_at DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&reports).Error
	if err != nil {
		return nil, 0, fmt.Errorf("report service: list reports: %w", err)
	}
	return reports, total, nil
}

// UpdateStatus moves a report through the moderation workflow.
func (s *ReportService) UpdateStatus(ctx context.Context, reportID, status, adminNotes, adminID string) (*models.Report, error) {
	ctx = ensureContext(ctx)

	if _, ok := reportStatuses[status]; !ok {
		return nil, apperrors.NewBadRequest("Invalid report status")
	}

	var report models.Report
	err := s.db.WithContext(ctx).Where("id = ?", reportID).Take(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("Report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("report service: find report: %w", err)
	}

	updates := map[string]any{
		"status":      status,
		"admin_notes": strings.TrimSpace(adminNotes),
	}
	if status == models.ReportStatusResolved || status == models.ReportStatusRejected {
		now := s.now()
		updates["resolved_by"] = adminID
		updates["resolved_at"] = now
	}

	if err := s.db.WithContext(ctx).Model(&report).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("report service: update report: %w", err)
	}

	if err := s.db.WithContext(ctx).Where("id = ?", reportID).Take(&report).Error; err != nil {
		return nil, fmt.Errorf("report service: reload report: %w", err)
	}
	return &report, nil
}
