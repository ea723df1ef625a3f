package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/models"
	"github.com/syriashof/shof/pkg/logger"
)

// DefaultAuditRetention is how long admin log rows are kept.
const DefaultAuditRetention = 90 * 24 * time.Hour

// AuditEntry describes one privileged action to record.
type AuditEntry struct {
	AdminID    string
	AdminEmail string
	Action     string
	TargetType string
	TargetID   string
	Details    map[string]any
	IPAddress  string
}

// AuditService persists the admin action trail. Writes happen off the
// request path and failures are logged, never surfaced: an audit hiccup
// must not fail the action it describes.
type AuditService struct {
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// AuditOption customises the AuditService.
type AuditOption func(*AuditService)

// WithAuditRetention overrides how long log rows live.
func WithAuditRetention(d time.Duration) AuditOption {
	return func(s *AuditService) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithAuditClock injects the time source.
func WithAuditClock(now func() time.Time) AuditOption {
	return func(s *AuditService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAuditService constructs the audit logger.
func NewAuditService(db *gorm.DB, opts ...AuditOption) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}

	s := &AuditService{
		db:        db,
		retention: DefaultAuditRetention,
		now:       time.Now,
		log:       logger.WithModule("audit"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LogAsync records an entry in the background and returns immediately.
func (s *AuditService) LogAsync(entry AuditEntry) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Record(ctx, entry); err != nil {
			s.log.Warn("audit write failed",
				zap.String("action", entry.Action),
				zap.Error(err),
			)
		}
	}()
}

// Record writes one entry synchronously.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) error {
	ctx = ensureContext(ctx)

	var details datatypes.JSON
	if len(entry.Details) > 0 {
		buf, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("audit service: marshal details: %w", err)
		}
		details = datatypes.JSON(buf)
	}

	row := &models.AdminLog{
		AdminID:    entry.AdminID,
		AdminEmail: entry.AdminEmail,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Details:    details,
		IPAddress:  entry.IPAddress,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("audit service: create log: %w", err)
	}
	return nil
}

// AuditFilter narrows List results.
type AuditFilter struct {
	AdminID string
	Action  string
	Limit   int
	Offset  int
}

// List returns log rows, newest first.
func (s *AuditService) List(ctx context.Context, filter AuditFilter) ([]models.AdminLog, int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.AdminLog{})
	if filter.AdminID != "" {
		query = query.Where("admin_id = ?", filter.AdminID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("audit service: count logs: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []models.AdminLog
	err := query.Order("created_at DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("audit service: list logs: %w", err)
	}
	return rows, total, nil
}

// CleanupOld removes rows past the retention window.
func (s *AuditService) CleanupOld(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	cutoff := s.now().Add(-s.retention)
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AdminLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("audit service: cleanup logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
