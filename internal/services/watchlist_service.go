package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/models"
	apperrors "github.com/syriashof/shof/pkg/errors"
)

// WatchlistService manages each user's saved-for-later list.
type WatchlistService struct {
	db *gorm.DB
}

// NewWatchlistService constructs the watchlist manager.
func NewWatchlistService(db *gorm.DB) (*WatchlistService, error) {
	if db == nil {
		return nil, errors.New("watchlist service: db is required")
	}
	return &WatchlistService{db: db}, nil
}

// List returns the user's saved movies, most recently added first.
func (s *WatchlistService) List(ctx context.Context, userID string) ([]models.Movie, error) {
	ctx = ensureContext(ctx)

	var movies []models.Movie
	err := s.db.WithContext(ctx).Model(&models.Movie{}).
		Joins("JOIN watchlist_items ON watchlist_items.movie_id = movies.id").
		Where("watchlist_items.user_id = ? AND movies.status = ?", userID, models.MovieStatusActive).
		Order("watchlist_items.created_at DESC").
		Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("watchlist service: list: %w", err)
	}
	return movies, nil
}

// Add saves a movie. Adding a movie that is already saved succeeds
// without creating a duplicate.
func (s *WatchlistService) Add(ctx context.Context, userID, movieID string) error {
	ctx = ensureContext(ctx)

	var movie models.Movie
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", movieID, models.MovieStatusActive).
		Take(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound.WithMessage("Movie not found")
	}
	if err != nil {
		return fmt.Errorf("watchlist service: find movie: %w", err)
	}

	item := models.WatchlistItem{UserID: userID, MovieID: movieID}
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		FirstOrCreate(&item).Error
	if err != nil {
		return fmt.Errorf("watchlist service: add: %w", err)
	}
	return nil
}

// Remove drops a movie from the list; absent entries are not an error.
func (s *WatchlistService) Remove(ctx context.Context, userID, movieID string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&models.WatchlistItem{}).Error
	if err != nil {
		return fmt.Errorf("watchlist service: remove: %w", err)
	}
	return nil
}

// Contains reports whether the movie is on the user's list.
func (s *WatchlistService) Contains(ctx context.Context, userID, movieID string) (bool, error) {
	ctx = ensureContext(ctx)

	var count int64
	err := s.db.WithContext(ctx).Model(&models.WatchlistItem{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("watchlist service: check: %w", err)
	}
	return count > 0, nil
}
