package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/cache"
	"github.com/syriashof/shof/internal/models"
	apperrors "github.com/syriashof/shof/pkg/errors"
)

const movieListCacheTTL = time.Minute

// MovieFilter narrows the public catalogue listing.
type MovieFilter struct {
	Category string
	Genre    string
	Search   string
	Trending bool
	Featured bool
	Limit    int
	Offset   int
}

// MovieInput carries the fields an admin supplies when creating or
// editing a catalogue entry.
type MovieInput struct {
	TitleAr       string `json:"titleAr" validate:"required"`
	TitleEn       string `json:"titleEn"`
	DescriptionAr string `json:"descriptionAr"`
	DescriptionEn string `json:"descriptionEn"`
	VideoURL      string `json:"videoUrl" validate:"required,url"`
	PosterURL     string `json:"posterUrl" validate:"omitempty,url"`
	ThumbnailURL  string `json:"thumbnailUrl" validate:"omitempty,url"`
	Duration      int    `json:"duration" validate:"gte=0"`
	Year          int    `json:"year" validate:"gte=0"`
	Genre         string `json:"genre"`
	Category      string `json:"category"`
	Trending      bool   `json:"trending"`
	Featured      bool   `json:"featured"`
}

// RatingSummary is returned after a rating upsert.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
	Yours   int     `json:"yours"`
}

// MovieService owns the catalogue: public listing and lookup, admin
// CRUD, view counting, and star ratings. Hot list queries go through
// the shared cache.
type MovieService struct {
	db    *gorm.DB
	cache cache.Store
}

// NewMovieService constructs the catalogue service. The cache is
// optional; without it every listing hits the database.
func NewMovieService(db *gorm.DB, store cache.Store) (*MovieService, error) {
	if db == nil {
		return nil, errors.New("movie service: db is required")
	}
	return &MovieService{db: db, cache: store}, nil
}

// List returns active movies matching the filter, newest first.
func (s *MovieService) List(ctx context.Context, filter MovieFilter) ([]models.Movie, int64, error) {
	ctx = ensureContext(ctx)

	if key, ok := s.listCacheKey(filter); ok {
		if cached, hit := s.cachedList(ctx, key); hit {
			return cached.Movies, cached.Total, nil
		}
	}

	query := s.db.WithContext(ctx).Model(&models.Movie{}).
		Where("status = ?", models.MovieStatusActive)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Genre != "" {
		query = query.Where("genre = ?", filter.Genre)
	}
	if filter.Trending {
		query = query.Where("trending = ?", true)
	}
	if filter.Featured {
		query = query.Where("featured = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title_ar LIKE ? OR title_en LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("movie service: count movies: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var movies []models.Movie
	err := query.Order("created_at DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&movies).Error
	if err != nil {
		return nil, 0, fmt.Errorf("movie service: list movies: %w", err)
	}

	if key, ok := s.listCacheKey(filter); ok {
		s.storeList(ctx, key, movies, total)
	}
	return movies, total, nil
}

// Get returns one active movie.
func (s *MovieService) Get(ctx context.Context, id string) (*models.Movie, error) {
	ctx = ensureContext(ctx)

	var movie models.Movie
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.MovieStatusActive).
		Take(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("Movie not found")
	}
	if err != nil {
		return nil, fmt.Errorf("movie service: find movie: %w", err)
	}
	return &movie, nil
}

// GetAny returns a movie regardless of status; admin screens use this.
func (s *MovieService) GetAny(ctx context.Context, id string) (*models.Movie, error) {
	ctx = ensureContext(ctx)

	var movie models.Movie
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&movie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("Movie not found")
	}
	if err != nil {
		return nil, fmt.Errorf("movie service: find movie: %w", err)
	}
	return &movie, nil
}

// IncrementViews bumps the play counter.
func (s *MovieService) IncrementViews(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)
	return s.db.WithContext(ctx).Model(&models.Movie{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// Create adds a catalogue entry.
func (s *MovieService) Create(ctx context.Context, createdBy string, input MovieInput) (*models.Movie, error) {
	ctx = ensureContext(ctx)

	movie := &models.Movie{
		TitleAr:       strings.TrimSpace(input.TitleAr),
		TitleEn:       strings.TrimSpace(input.TitleEn),
		DescriptionAr: input.DescriptionAr,
		DescriptionEn: input.DescriptionEn,
		VideoURL:      strings.TrimSpace(input.VideoURL),
		PosterURL:     strings.TrimSpace(input.PosterURL),
		ThumbnailURL:  strings.TrimSpace(input.ThumbnailURL),
		Duration:      input.Duration,
		Year:          input.Year,
		Genre:         strings.TrimSpace(input.Genre),
		Category:      strings.TrimSpace(input.Category),
		Trending:      input.Trending,
		Featured:      input.Featured,
		Status:        models.MovieStatusActive,
		CreatedBy:     createdBy,
	}
	if err := s.db.WithContext(ctx).Create(movie).Error; err != nil {
		return nil, fmt.Errorf("movie service: create movie: %w", err)
	}

	s.invalidateLists(ctx)
	return movie, nil
}

// Update edits an existing entry in place.
func (s *MovieService) Update(ctx context.Context, id string, input MovieInput) (*models.Movie, error) {
	ctx = ensureContext(ctx)

	movie, err := s.GetAny(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"title_ar":       strings.TrimSpace(input.TitleAr),
		"title_en":       strings.TrimSpace(input.TitleEn),
		"description_ar": input.DescriptionAr,
		"description_en": input.DescriptionEn,
		"video_url":      strings.TrimSpace(input.VideoURL),
		"poster_url":     strings.TrimSpace(input.PosterURL),
		"thumbnail_url":  strings.TrimSpace(input.ThumbnailURL),
		"duration":       input.Duration,
		"year":           input.Year,
		"genre":          strings.TrimSpace(input.Genre),
		"category":       strings.TrimSpace(input.Category),
		"trending":       input.Trending,
		"featured":       input.Featured,
	}
	if err := s.db.WithContext(ctx).Model(movie).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("movie service: update movie: %w", err)
	}

	s.invalidateLists(ctx)
	return s.GetAny(ctx, id)
}

// Delete removes a movie and its dependent rows.
func (s *MovieService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.Movie{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound.WithMessage("Movie not found")
		}

		for _, dependent := range []any{
			&models.Rating{}, &models.Comment{},
			&models.WatchlistItem{}, &models.WatchHistory{},
		} {
			if err := tx.Where("movie_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateLists(ctx)
	return nil
}

// Rate upserts a user's score for a movie and returns the new average.
// Scores run 1 through 5.
func (s *MovieService) Rate(ctx context.Context, userID, movieID string, score int) (*RatingSummary, error) {
	ctx = ensureContext(ctx)

	if score < 1 || score > 5 {
		return nil, apperrors.NewBadRequest("Rating must be between 1 and 5")
	}
	if _, err := s.Get(ctx, movieID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rating models.Rating
		err := tx.Where("movie_id = ? AND user_id = ?", movieID, userID).Take(&rating).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.Rating{MovieID: movieID, UserID: userID, Score: score}).Error
		case err != nil:
			return err
		default:
			return tx.Model(&rating).Update("score", score).Error
		}
	})
	if err != nil {
		return nil, fmt.Errorf("movie service: rate movie: %w", err)
	}

	return s.ratingSummary(ctx, movieID, score)
}

// Ratings returns the aggregate for a movie without writing anything.
func (s *MovieService) Ratings(ctx context.Context, movieID string) (*RatingSummary, error) {
	return s.ratingSummary(ensureContext(ctx), movieID, 0)
}

func (s *MovieService) ratingSummary(ctx context.Context, movieID string, yours int) (*RatingSummary, error) {
	var summary struct {
		Average float64
		Count   int64
	}
	err := s.db.WithContext(ctx).Model(&models.Rating{}).
		Select("COALESCE(AVG(score), 0) AS average, COUNT(*) AS count").
		Where("movie_id = ?", movieID).
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("movie service: rating summary: %w", err)
	}

	return &RatingSummary{Average: summary.Average, Count: summary.Count, Yours: yours}, nil
}

type cachedMovieList struct {
	Movies []models.Movie `json:"movies"`
	Total  int64          `json:"total"`
}

// Only unpaginated, unsearched listings are cached; those are the hot
// home-page queries.
func (s *MovieService) listCacheKey(filter MovieFilter) (string, bool) {
	if s.cache == nil || filter.Search != "" || filter.Offset != 0 || filter.Limit != 0 {
		return "", false
	}
	return fmt.Sprintf("movies:list:%s:%s:%t:%t",
		filter.Category, filter.Genre, filter.Trending, filter.Featured), true
}

func (s *MovieService) cachedList(ctx context.Context, key string) (*cachedMovieList, bool) {
	buf, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var cached cachedMovieList
	if err := json.Unmarshal(buf, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}

func (s *MovieService) storeList(ctx context.Context, key string, movies []models.Movie, total int64) {
	buf, err := json.Marshal(cachedMovieList{Movies: movies, Total: total})
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, buf, movieListCacheTTL)
}

func (s *MovieService) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// Enumerate the cacheable key space rather than scanning the backend.
	categories := []string{""}
	var stored []string
	_ = s.db.WithContext(ctx).Model(&models.Movie{}).Distinct("category").Pluck("category", &stored)
	categories = append(categories, stored...)

	var genres []string
	_ = s.db.WithContext(ctx).Model(&models.Movie{}).Distinct("genre").Pluck("genre", &genres)
	genres = append([]string{""}, genres...)

	keys := make([]string, 0, len(categories)*len(genres)*4)
	for _, c := range categories {
		for _, g := range genres {
			for _, t := range []bool{false, true} {
				for _, f := range []bool{false, true} {
					keys = append(keys, fmt.Sprintf("movies:list:%s:%s:%t:%t", c, g, t, f))
				}
			}
		}
	}
	_ = s.cache.Delete(ctx, keys...)
}
