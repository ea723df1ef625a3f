package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syriashof/shof/internal/database/testutil"
	"github.com/syriashof/shof/internal/models"
)

func TestWatchlistAddIsIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	movies, err := NewMovieService(db, nil)
	require.NoError(t, err)
	svc, err := NewWatchlistService(db)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, movies, "فيلم")
	user := seedUser(t, db, "saver@example.com")

	require.NoError(t, svc.Add(ctx, user.ID, movie.ID))
	require.NoError(t, svc.Add(ctx, user.ID, movie.ID))

	var count int64
	require.NoError(t, db.Model(&models.WatchlistItem{}).
		Where("user_id = ? AND movie_id = ?", user.ID, movie.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	saved, err := svc.Contains(ctx, user.ID, movie.ID)
	require.NoError(t, err)
	require.True(t, saved)

	err = svc.Add(ctx, user.ID, "missing-movie")
	requireNotFound(t, err)
}

func TestWatchlistListSkipsArchived(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	movies, err := NewMovieService(db, nil)
	require.NoError(t, err)
	svc, err := NewWatchlistService(db)
	require.NoError(t, err)
	ctx := context.Background()

	keep := seedMovie(t, movies, "يبقى")
	archived := seedMovie(t, movies, "مؤرشف")
	user := seedUser(t, db, "lister@example.com")

	require.NoError(t, svc.Add(ctx, user.ID, keep.ID))
	require.NoError(t, svc.Add(ctx, user.ID, archived.ID))
	require.NoError(t, db.Model(&models.Movie{}).
		Where("id = ?", archived.ID).
		Update("status", models.MovieStatusArchived).Error)

	listed, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, keep.ID, listed[0].ID)
}

func TestWatchlistRemove(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	movies, err := NewMovieService(db, nil)
	require.NoError(t, err)
	svc, err := NewWatchlistService(db)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, movies, "فيلم")
	user := seedUser(t, db, "remover@example.com")

	require.NoError(t, svc.Add(ctx, user.ID, movie.ID))
	require.NoError(t, svc.Remove(ctx, user.ID, movie.ID))

	saved, err := svc.Contains(ctx, user.ID, movie.ID)
	require.NoError(t, err)
	require.False(t, saved)

	// Removing again is not an error.
	require.NoError(t, svc.Remove(ctx, user.ID, movie.ID))
}
