package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/syriashof/shof/internal/database/testutil"
	"github.com/syriashof/shof/internal/models"
)

func TestReportCreate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	movies, err := NewMovieService(db, nil)
	require.NoError(t, err)
	svc, err := NewReportService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	movie := seedMovie(t, movies, "فيلم معطل")
	user := seedUser(t, db, "reporter@example.com")

	report, err := svc.Create(ctx, user.ID, ReportInput{
		MovieID:     movie.ID,
		Category:    "playback",
		Description: "  الفيديو يتوقف عند الدقيقة العاشرة  ",
		ContactInfo: "@reporter",
	})
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusPending, report.Status)
	require.Equal(t, "الفيديو يتوقف عند الدقيقة العاشرة", report.Description)
	require.NotNil(t, report.UserID)
	require.Equal(t, user.ID, *report.UserID)
	require.NotNil(t, report.MovieID)

	// Anonymous, movie-less reports are allowed.
	anon, err := svc.Create(ctx, "", ReportInput{Category: "suggestion", Description: "أضيفوا أفلام وثائقية"})
	require.NoError(t, err)
	require.Nil(t, anon.UserID)
	require.Nil(t, anon.MovieID)
}

func TestReportCreateValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewReportService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, "", ReportInput{Category: "nonsense", Description: "وصف"})
	requireBadRequest(t, err)

	_, err = svc.Create(ctx, "", ReportInput{Category: "other", Description: "   "})
	requireBadRequest(t, err)

	_, err = svc.Create(ctx, "", ReportInput{Category: "other", Description: "وصف", MovieID: "missing-movie"})
	requireNotFound(t, err)
}

func TestReportListByStatus(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewReportService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err = svc.Create(ctx, "", ReportInput{Category: "other", Description: "بلاغ"})
		require.NoError(t, err)
	}

	reports, total, err := svc.List(ctx, ReportFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, reports, 3)

	_, err = svc.UpdateStatus(ctx, reports[0].ID, models.ReportStatusResolved, "", "admin-1")
	require.NoError(t, err)

	pending, total, err := svc.List(ctx, ReportFilter{Status: models.ReportStatusPending})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, pending, 2)

	_, _, err = svc.List(ctx, ReportFilter{Status: "bogus"})
	requireBadRequest(t, err)
}

func TestReportUpdateStatus(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	current := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewReportService(db, nil, WithReportClock(func() time.Time { return current }))
	require.NoError(t, err)
	ctx := context.Background()

	report, err := svc.Create(ctx, "", ReportInput{Category: "subtitle", Description: "الترجمة غير متزامنة"})
	require.NoError(t, err)

	reviewed, err := svc.UpdateStatus(ctx, report.ID, models.ReportStatusReviewed, "قيد الفحص", "admin-1")
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusReviewed, reviewed.Status)
	require.Equal(t, "قيد الفحص", reviewed.AdminNotes)
	require.Nil(t, reviewed.ResolvedAt)

	resolved, err := svc.UpdateStatus(ctx, report.ID, models.ReportStatusResolved, "تم الإصلاح", "admin-1")
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	require.Equal(t, "admin-1", *resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)

	_, err = svc.UpdateStatus(ctx, report.ID, "bogus", "", "admin-1")
	requireBadRequest(t, err)
	_, err = svc.UpdateStatus(ctx, "missing-report", models.ReportStatusResolved, "", "admin-1")
	requireNotFound(t, err)
}
