package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syriashof/shof/internal/database/testutil"
	"github.com/syriashof/shof/internal/models"
)

func TestCommentAddAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	movies, err := NewMovieService(db, nil)
	require.NoError(t, err)
	svc, err := NewCommentService(db)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, movies, "فيلم")
	user := seedUser(t, db, "talker@example.com")

	comment, err := svc.Add(ctx, user, movie.ID, "  فيلم ممتاز  ", nil)
	require.NoError(t, err)
	require.Equal(t, "فيلم ممتاز", comment.Content)
	require.Equal(t, user.DisplayName, comment.UserName)
	require.Nil(t, comment.ParentID)

	reply, err := svc.Add(ctx, user, movie.ID, "أتفق معك", &comment.ID)
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	require.Equal(t, comment.ID, *reply.ParentID)

	listed, err := svc.ListForMovie(ctx, movie.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestCommentAddValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	movies, err := NewMovieService(db, nil)
	require.NoError(t, err)
	svc, err := NewCommentService(db)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, movies, "فيلم")
	other := seedMovie(t, movies, "فيلم آخر")
	user := seedUser(t, db, "strict@example.com")

	_, err = svc.Add(ctx, user, movie.ID, "   ", nil)
	requireBadRequest(t, err)

	_, err = svc.Add(ctx, user, movie.ID, strings.Repeat("ا", maxCommentLength+1), nil)
	requireBadRequest(t, err)

	_, err = svc.Add(ctx, user, "missing-movie", "مرحبا", nil)
	requireNotFound(t, err)

	// A reply must point at a comment on the same movie.
	parent, err := svc.Add(ctx, user, other.ID, "تعليق", nil)
	require.NoError(t, err)
	_, err = svc.Add(ctx, user, movie.ID, "رد", &parent.ID)
	requireNotFound(t, err)
}

func TestCommentDeleteAuthorization(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	movies, err := NewMovieService(db, nil)
	require.NoError(t, err)
	svc, err := NewCommentService(db)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, movies, "فيلم")
	author := seedUser(t, db, "author@example.com")
	stranger := seedUser(t, db, "stranger@example.com")
	admin := seedUser(t, db, "admin@example.com")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", admin.ID).Update("is_admin", true).Error)
	admin.IsAdmin = true

	comment, err := svc.Add(ctx, author, movie.ID, "تعليقي", nil)
	require.NoError(t, err)
	_, err = svc.Add(ctx, stranger, movie.ID, "رد", &comment.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, stranger, comment.ID)
	requireForbidden(t, err)

	// Deleting the parent takes its replies with it.
	require.NoError(t, svc.Delete(ctx, author, comment.ID))
	listed, err := svc.ListForMovie(ctx, movie.ID)
	require.NoError(t, err)
	require.Empty(t, listed)

	second, err := svc.Add(ctx, author, movie.ID, "مرة أخرى", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, admin, second.ID))

	err = svc.Delete(ctx, author, "missing-comment")
	requireNotFound(t, err)
}

func TestCommentLike(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	movies, err := NewMovieService(db, nil)
	require.NoError(t, err)
	svc, err := NewCommentService(db)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, movies, "فيلم")
	user := seedUser(t, db, "fan@example.com")
	comment, err := svc.Add(ctx, user, movie.ID, "أعجبني", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Like(ctx, comment.ID))
	require.NoError(t, svc.Like(ctx, comment.ID))

	var stored models.Comment
	require.NoError(t, db.Where("id = ?", comment.ID).Take(&stored).Error)
	require.Equal(t, 2, stored.Likes)

	err = svc.Like(ctx, "missing-comment")
	requireNotFound(t, err)
}
