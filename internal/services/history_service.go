package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/models"
	apperrors "github.com/syriashof/shof/pkg/errors"
)

// HistoryEntry pairs a history row with its movie for listing.
type HistoryEntry struct {
	models.WatchHistory
	Movie models.Movie `json:"movie"`
}

// HistoryService tracks playback progress so viewers can pick up where
// they left off.
type HistoryService struct {
	db  *gorm.DB
	now func() time.Time
}

// HistoryOption customises the HistoryService.
type HistoryOption func(*HistoryService)

// WithHistoryClock injects the time source.
func WithHistoryClock(now func() time.Time) HistoryOption {
	return func(s *HistoryService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewHistoryService constructs the watch history manager.
func NewHistoryService(db *gorm.DB, opts ...HistoryOption) (*HistoryService, error) {
	if db == nil {
		return nil, errors.New("history service: db is required")
	}

	s := &HistoryService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List returns the user's history, most recently watched first.
func (s *HistoryService) List(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	return s.list(ctx, userID, limit, false)
}

// ContinueWatching returns unfinished items with progress, newest first.
func (s *HistoryService) ContinueWatching(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	return s.list(ctx, userID, limit, true)
}

func (s *HistoryService) list(ctx context.Context, userID string, limit int, onlyUnfinished bool) ([]HistoryEntry, error) {
	ctx = ensureContext(ctx)

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_watched DESC").
		Limit(limit)
	if onlyUnfinished {
		query = query.Where("completed = ? AND progress_seconds > 0", false)
	}

	var rows []models.WatchHistory
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("history service: list: %w", err)
	}
	if len(rows) == 0 {
		return []HistoryEntry{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MovieID)
	}

	var movies []models.Movie
	err := s.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, models.MovieStatusActive).
		Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("history service: load movies: %w", err)
	}

	byID := make(map[string]models.Movie, len(movies))
	for _, movie := range movies {
		byID[movie.ID] = movie
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		movie, ok := byID[row.MovieID]
		if !ok {
			continue // movie archived or deleted since
		}
		entries = append(entries, HistoryEntry{WatchHistory: row, Movie: movie})
	}
	return entries, nil
}

// Update records progress for a movie, creating the row on first play.
func (s *HistoryService) Update(ctx context.Context, userID, movieID string, progressSeconds int, completed bool) (*models.WatchHistory, error) {
	ctx = ensureContext(ctx)

	if progressSeconds < 0 {
		return nil, apperrors.NewBadRequest("Progress cannot be negative")
	}

	var movie models.Movie
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", movieID, models.MovieStatusActive).
		Take(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("Movie not found")
	}
	if err != nil {
		return nil, fmt.Errorf("history service: find movie: %w", err)
	}

	now := s.now()
	var row models.WatchHistory
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND movie_id = ?", userID, movieID).Take(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = models.WatchHistory{
				UserID:          userID,
				MovieID:         movieID,
				ProgressSeconds: progressSeconds,
				Completed:       completed,
				LastWatched:     now,
			}
			return tx.Create(&row).Error
		case err != nil:
			return err
		default:
			updates := map[string]any{
				"progress_seconds": progressSeconds,
				"completed":        completed,
				"last_watched":     now,
			}
			if err := tx.Model(&row).Updates(updates).Error; err != nil {
				return err
			}
			row.ProgressSeconds = progressSeconds
			row.Completed = completed
			row.LastWatched = now
			return nil
		}
	})
	if err != nil {
		return nil, fmt.Errorf("history service: update: %w", err)
	}
	return &row, nil
}

// Progress returns the stored position for one movie, nil when the
// user never played it.
func (s *HistoryService) Progress(ctx context.Context, userID, movieID string) (*models.WatchHistory, error) {
	ctx = ensureContext(ctx)

	var row models.WatchHistory
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history service: progress: %w", err)
	}
	return &row, nil
}
