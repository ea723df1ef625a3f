package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/models"
	apperrors "github.com/syriashof/shof/pkg/errors"
)

// ProfileStats aggregates a user's activity counters.
type ProfileStats struct {
	MoviesWatched int64 `json:"moviesWatched"`
	WatchlistSize int64 `json:"watchlistSize"`
	Comments      int64 `json:"comments"`
	Ratings       int64 `json:"ratings"`
}

// ProfileService exposes the signed-in user's own account data.
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService constructs the profile manager.
func NewProfileService(db *gorm.DB) (*ProfileService, error) {
	if db == nil {
		return nil, errors.New("profile service: db is required")
	}
	return &ProfileService{db: db}, nil
}

// Update changes the display name and avatar. Comments carry a
// denormalised author name, so those update too.
func (s *ProfileService) Update(ctx context.Context, userID, displayName, avatarURL string) (*models.User, error) {
	ctx = ensureContext(ctx)

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperrors.NewBadRequest("Display name cannot be empty")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]any{
				"display_name": displayName,
				"avatar_url":   strings.TrimSpace(avatarURL),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound.WithMessage("User not found")
		}

		return tx.Model(&models.Comment{}).
			Where("user_id = ?", userID).
			Update("user_name", displayName).Error
	})
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error; err != nil {
		return nil, fmt.Errorf("profile service: reload user: %w", err)
	}
	return &user, nil
}

// Stats returns the activity counters shown on the profile page.
func (s *ProfileService) Stats(ctx context.Context, userID string) (*ProfileStats, error) {
	ctx = ensureContext(ctx)

	stats := &ProfileStats{}

	err := s.db.WithContext(ctx).Model(&models.WatchHistory{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&stats.MoviesWatched).Error
	if err != nil {
		return nil, fmt.Errorf("profile service: watched count: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.WatchlistItem{}).
		Where("user_id = ?", userID).
		Count(&stats.WatchlistSize).Error
	if err != nil {
		return nil, fmt.Errorf("profile service: watchlist count: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("user_id = ?", userID).
		Count(&stats.Comments).Error
	if err != nil {
		return nil, fmt.Errorf("profile service: comment count: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&models.Rating{}).
		Where("user_id = ?", userID).
		Count(&stats.Ratings).Error
	if err != nil {
		return nil, fmt.Errorf("profile service: rating count: %w", err)
	}

	return stats, nil
}
