package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/cache"
	"github.com/syriashof/shof/internal/database/testutil"
	"github.com/syriashof/shof/internal/models"
	apperrors "github.com/syriashof/shof/pkg/errors"
)

func movieInput(titleAr string) MovieInput {
	return MovieInput{
		TitleAr:  titleAr,
		TitleEn:  "Title",
		VideoURL: "https://cdn.example.com/video.mp4",
		Duration: 5400,
		Year:     2024,
		Genre:    "drama",
		Category: "movies",
	}
}

func seedMovie(t *testing.T, svc *MovieService, titleAr string) *models.Movie {
	t.Helper()

	movie, err := svc.Create(context.Background(), "admin-1", movieInput(titleAr))
	require.NoError(t, err)
	return movie
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:       email,
		Password:    "$2a$10$abcdefghijklmnopqrstuv",
		DisplayName: "Viewer",
		IsVerified:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestMovieListFiltersAndSearch(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewMovieService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	drama := seedMovie(t, svc, "فيلم درامي")
	input := movieInput("مسلسل كوميدي")
	input.Category = "series"
	input.Genre = "comedy"
	input.Trending = true
	series, err := svc.Create(ctx, "admin-1", input)
	require.NoError(t, err)

	movies, total, err := svc.List(ctx, MovieFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, movies, 2)

	movies, total, err = svc.List(ctx, MovieFilter{Category: "series"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, series.ID, movies[0].ID)

	movies, _, err = svc.List(ctx, MovieFilter{Trending: true})
	require.NoError(t, err)
	require.Len(t, movies, 1)
	require.Equal(t, series.ID, movies[0].ID)

	movies, _, err = svc.List(ctx, MovieFilter{Search: "درامي"})
	require.NoError(t, err)
	require.Len(t, movies, 1)
	require.Equal(t, drama.ID, movies[0].ID)

	movies, _, err = svc.List(ctx, MovieFilter{Search: "no-such-title"})
	require.NoError(t, err)
	require.Empty(t, movies)
}

func TestMovieListCaching(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	store := cache.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	svc, err := NewMovieService(db, store)
	require.NoError(t, err)
	ctx := context.Background()

	seedMovie(t, svc, "الفيلم الأول")

	movies, total, err := svc.List(ctx, MovieFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	// Served from cache now: a raw row insert stays invisible.
	require.NoError(t, db.Create(&models.Movie{
		TitleAr: "خفي", VideoURL: "https://cdn.example.com/x.mp4", Status: models.MovieStatusActive,
	}).Error)
	movies, total, err = svc.List(ctx, MovieFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, movies, 1)

	// Writes through the service invalidate the cached listings.
	seedMovie(t, svc, "الفيلم الثاني")
	_, total, err = svc.List(ctx, MovieFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
}

func TestMovieGetOnlyActive(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewMovieService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, svc, "فيلم")
	require.NoError(t, db.Model(&models.Movie{}).
		Where("id = ?", movie.ID).
		Update("status", models.MovieStatusArchived).Error)

	_, err = svc.Get(ctx, movie.ID)
	requireNotFound(t, err)

	// Admin screens still see it.
	found, err := svc.GetAny(ctx, movie.ID)
	require.NoError(t, err)
	require.Equal(t, movie.ID, found.ID)
}

func TestMovieUpdateAndIncrementViews(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewMovieService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, svc, "قبل التعديل")

	input := movieInput("بعد التعديل")
	input.Featured = true
	updated, err := svc.Update(ctx, movie.ID, input)
	require.NoError(t, err)
	require.Equal(t, "بعد التعديل", updated.TitleAr)
	require.True(t, updated.Featured)

	require.NoError(t, svc.IncrementViews(ctx, movie.ID))
	require.NoError(t, svc.IncrementViews(ctx, movie.ID))

	found, err := svc.Get(ctx, movie.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, found.Views)
}

func TestMovieDeleteRemovesDependents(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewMovieService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, svc, "للحذف")
	user := seedUser(t, db, "rater@example.com")

	_, err = svc.Rate(ctx, user.ID, movie.ID, 4)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Comment{
		MovieID: movie.ID, UserID: user.ID, UserName: user.DisplayName, Content: "رائع",
	}).Error)
	require.NoError(t, db.Create(&models.WatchlistItem{UserID: user.ID, MovieID: movie.ID}).Error)

	require.NoError(t, svc.Delete(ctx, movie.ID))

	for _, model := range []any{&models.Rating{}, &models.Comment{}, &models.WatchlistItem{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("movie_id = ?", movie.ID).Count(&count).Error)
		require.Zero(t, count)
	}

	err = svc.Delete(ctx, movie.ID)
	requireNotFound(t, err)
}

func TestMovieRateUpsertsAndAverages(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewMovieService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, svc, "مقيم")
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	summary, err := svc.Rate(ctx, alice.ID, movie.ID, 5)
	require.NoError(t, err)
	require.EqualValues(t, 1, summary.Count)
	require.InDelta(t, 5.0, summary.Average, 0.001)

	summary, err = svc.Rate(ctx, bob.ID, movie.ID, 2)
	require.NoError(t, err)
	require.EqualValues(t, 2, summary.Count)
	require.InDelta(t, 3.5, summary.Average, 0.001)
	require.Equal(t, 2, summary.Yours)

	// Re-rating replaces the earlier score instead of adding a row.
	summary, err = svc.Rate(ctx, bob.ID, movie.ID, 4)
	require.NoError(t, err)
	require.EqualValues(t, 2, summary.Count)
	require.InDelta(t, 4.5, summary.Average, 0.001)

	_, err = svc.Rate(ctx, alice.ID, movie.ID, 6)
	requireBadRequest(t, err)
	_, err = svc.Rate(ctx, alice.ID, movie.ID, 0)
	requireBadRequest(t, err)
	_, err = svc.Rate(ctx, alice.ID, "missing-movie", 3)
	requireNotFound(t, err)
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
}

func requireBadRequest(t *testing.T, err error) {
	t.Helper()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrBadRequest.Code, appErr.Code)
}

func requireForbidden(t *testing.T, err error) {
	t.Helper()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperrors.ErrForbidden.Code, appErr.Code)
}
