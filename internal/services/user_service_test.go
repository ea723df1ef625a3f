package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/syriashof/shof/internal/database/testutil"
	"github.com/syriashof/shof/internal/models"
)

func TestUserBanRevokesSessions(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedUser(t, db, "member@example.com")
	require.NoError(t, db.Create(&models.Session{
		Token: "tok-1", UserID: user.ID, Email: user.Email,
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	banned, err := svc.Ban(ctx, user.ID, "  spam  ")
	require.NoError(t, err)
	require.True(t, banned.Banned)
	require.Equal(t, "spam", banned.BanReason)

	var sessions int64
	require.NoError(t, db.Model(&models.Session{}).Where("user_id = ?", user.ID).Count(&sessions).Error)
	require.Zero(t, sessions)

	unbanned, err := svc.Unban(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, unbanned.Banned)
	require.Empty(t, unbanned.BanReason)
}

func TestUserBanRejectsAdmins(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	admin := seedUser(t, db, "admin@example.com")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", admin.ID).Update("is_admin", true).Error)

	_, err = svc.Ban(ctx, admin.ID, "never")
	requireForbidden(t, err)

	err = svc.Delete(ctx, admin.ID)
	requireForbidden(t, err)

	_, err = svc.Ban(ctx, "missing-user", "")
	requireNotFound(t, err)
}

func TestUserDeleteCascades(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	movies, err := NewMovieService(db, nil)
	require.NoError(t, err)
	comments, err := NewCommentService(db)
	require.NoError(t, err)
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, movies, "فيلم")
	user := seedUser(t, db, "leaver@example.com")

	_, err = movies.Rate(ctx, user.ID, movie.ID, 4)
	require.NoError(t, err)
	_, err = comments.Add(ctx, user, movie.ID, "وداعا", nil)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.WatchlistItem{UserID: user.ID, MovieID: movie.ID}).Error)
	require.NoError(t, db.Create(&models.Session{
		Token: "tok-2", UserID: user.ID, Email: user.Email,
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	require.NoError(t, svc.Delete(ctx, user.ID))

	for _, model := range []any{
		&models.Session{}, &models.Rating{}, &models.Comment{}, &models.WatchlistItem{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Where("user_id = ?", user.ID).Count(&count).Error)
		require.Zero(t, count)
	}

	_, err = svc.Get(ctx, user.ID)
	requireNotFound(t, err)
}

func TestUserListFilters(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	seedUser(t, db, "alpha@example.com")
	target := seedUser(t, db, "beta@example.com")
	_, err = svc.Ban(ctx, target.ID, "spam")
	require.NoError(t, err)

	users, total, err := svc.List(ctx, UserFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, users, 2)

	users, total, err = svc.List(ctx, UserFilter{Search: "beta"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, target.ID, users[0].ID)

	bannedOnly := true
	users, _, err = svc.List(ctx, UserFilter{Banned: &bannedOnly})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, target.ID, users[0].ID)
}
