package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/database/testutil"
	"github.com/syriashof/shof/internal/models"
	apperrors "github.com/syriashof/shof/pkg/errors"
)

func newAuthFixture(t *testing.T, db *gorm.DB) *Service {
	t.Helper()

	sessions, err := NewSessionService(db, SessionConfig{})
	require.NoError(t, err)
	verification, err := NewVerificationService(db, VerificationConfig{})
	require.NoError(t, err)
	resets, err := NewResetService(db, sessions, ResetConfig{})
	require.NoError(t, err)

	svc, err := NewService(db, sessions, verification, resets, nil, Config{
		BaseURL:     "https://shof.example/",
		FromAddress: "noreply@shof.example",
	})
	require.NoError(t, err)
	return svc
}

func storedVerificationCode(t *testing.T, db *gorm.DB, email string) string {
	t.Helper()

	var user models.User
	require.NoError(t, db.Where("email = ?", email).Take(&user).Error)
	require.NotNil(t, user.VerificationCode)
	return *user.VerificationCode
}

func requireAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)
	ctx := context.Background()

	result, err := svc.Register(ctx, "Viewer@Example.com", "sup3r-secret", "")
	require.NoError(t, err)
	require.True(t, result.NeedsVerification)
	require.Empty(t, result.SessionToken)
	require.Equal(t, "viewer@example.com", result.User.Email)
	require.Equal(t, "viewer", result.User.DisplayName)

	// Logging in before verifying re-sends the code instead of a session.
	result, err = svc.Login(ctx, "viewer@example.com", "sup3r-secret")
	require.NoError(t, err)
	require.True(t, result.NeedsVerification)
	require.Empty(t, result.SessionToken)

	code := storedVerificationCode(t, db, "viewer@example.com")
	result, err = svc.VerifyEmail(ctx, "viewer@example.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionToken)
	require.True(t, result.User.IsVerified)

	user, session, err := svc.ValidateSession(ctx, result.SessionToken)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, user.ID)
	require.Equal(t, user.ID, session.UserID)

	require.NoError(t, svc.Logout(ctx, result.SessionToken))
	_, _, err = svc.ValidateSession(ctx, result.SessionToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)

	result, err = svc.Login(ctx, "viewer@example.com", "sup3r-secret")
	require.NoError(t, err)
	require.False(t, result.NeedsVerification)
	require.NotEmpty(t, result.SessionToken)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)

	_, err := svc.Register(context.Background(), "not-an-email", "sup3r-secret", "")
	requireAppError(t, err, "BAD_REQUEST")

	_, err = svc.Register(context.Background(), "short@example.com", "short", "")
	requireAppError(t, err, "BAD_REQUEST")
}

func TestRegisterVerifiedEmailConflicts(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "taken@example.com", "sup3r-secret", "")
	require.NoError(t, err)
	code := storedVerificationCode(t, db, "taken@example.com")
	_, err = svc.VerifyEmail(ctx, "taken@example.com", code)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "taken@example.com", "sup3r-secret", "")
	appErr := requireAppError(t, err, "CONFLICT")
	require.Equal(t, "Email already registered", appErr.Message)
}

func TestRegisterUnverifiedEmailReissuesCode(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "again@example.com", "sup3r-secret", "Someone")
	require.NoError(t, err)

	result, err := svc.Register(ctx, "again@example.com", "sup3r-secret", "Someone")
	require.NoError(t, err)
	require.True(t, result.NeedsVerification)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "again@example.com").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "login@example.com", "sup3r-secret", "")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "login@example.com", "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// Unknown accounts answer the same way as wrong passwords.
	_, err = svc.Login(ctx, "nobody@example.com", "whatever-pass")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginBannedAccount(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "trouble@example.com", "sup3r-secret", "")
	require.NoError(t, err)
	code := storedVerificationCode(t, db, "trouble@example.com")
	_, err = svc.VerifyEmail(ctx, "trouble@example.com", code)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "trouble@example.com").
		Updates(map[string]any{"banned": true, "ban_reason": "spam"}).Error)

	_, err = svc.Login(ctx, "trouble@example.com", "sup3r-secret")
	appErr := requireAppError(t, err, "ACCOUNT_BANNED")
	require.Equal(t, "Account banned: spam", appErr.Message)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "verify@example.com", "sup3r-secret", "")
	require.NoError(t, err)

	_, err = svc.VerifyEmail(ctx, "verify@example.com", "000000")
	appErr := requireAppError(t, err, "BAD_REQUEST")
	require.Equal(t, "Invalid verification code", appErr.Message)

	// Unknown accounts get the identical answer.
	_, err = svc.VerifyEmail(ctx, "nobody@example.com", "000000")
	appErr = requireAppError(t, err, "BAD_REQUEST")
	require.Equal(t, "Invalid verification code", appErr.Message)
}

func TestResendCode(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "resend2@example.com", "sup3r-secret", "")
	require.NoError(t, err)

	require.NoError(t, svc.ResendCode(ctx, "resend2@example.com"))

	// Silent for unknown accounts.
	require.NoError(t, svc.ResendCode(ctx, "nobody@example.com"))

	code := storedVerificationCode(t, db, "resend2@example.com")
	_, err = svc.VerifyEmail(ctx, "resend2@example.com", code)
	require.NoError(t, err)

	err = svc.ResendCode(ctx, "resend2@example.com")
	requireAppError(t, err, "CONFLICT")
}

func TestForgotAndResetPassword(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "recover@example.com", "sup3r-secret", "")
	require.NoError(t, err)
	code := storedVerificationCode(t, db, "recover@example.com")
	verified, err := svc.VerifyEmail(ctx, "recover@example.com", code)
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "recover@example.com"))

	// Unknown accounts produce the same nil answer and no token row.
	require.NoError(t, svc.ForgotPassword(ctx, "nobody@example.com"))

	var reset models.PasswordReset
	require.NoError(t, db.Where("email = ?", "recover@example.com").Take(&reset).Error)

	err = svc.ResetPassword(ctx, reset.Token, "tiny")
	requireAppError(t, err, "BAD_REQUEST")

	require.NoError(t, svc.ResetPassword(ctx, reset.Token, "brand-new-pass"))

	// The redemption signed out every device.
	_, _, err = svc.ValidateSession(ctx, verified.SessionToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)

	result, err := svc.Login(ctx, "recover@example.com", "brand-new-pass")
	require.NoError(t, err)
	require.NotEmpty(t, result.SessionToken)

	err = svc.ResetPassword(ctx, reset.Token, "brand-new-pass")
	appErr := requireAppError(t, err, "BAD_REQUEST")
	require.Equal(t, "Invalid or expired reset token", appErr.Message)
}

func TestChangePasswordKeepsInitiatingSession(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "rotate@example.com", "sup3r-secret", "")
	require.NoError(t, err)
	code := storedVerificationCode(t, db, "rotate@example.com")
	first, err := svc.VerifyEmail(ctx, "rotate@example.com", code)
	require.NoError(t, err)

	second, err := svc.Login(ctx, "rotate@example.com", "sup3r-secret")
	require.NoError(t, err)

	user, session, err := svc.ValidateSession(ctx, second.SessionToken)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user, session, "wrong-current", "brand-new-pass")
	appErr := requireAppError(t, err, "INVALID_CREDENTIALS")
	require.Equal(t, "Current password is incorrect", appErr.Message)

	require.NoError(t, svc.ChangePassword(ctx, user, session, "sup3r-secret", "brand-new-pass"))

	// The device that changed the password stays signed in; others do not.
	_, _, err = svc.ValidateSession(ctx, second.SessionToken)
	require.NoError(t, err)
	_, _, err = svc.ValidateSession(ctx, first.SessionToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)

	_, err = svc.Login(ctx, "rotate@example.com", "brand-new-pass")
	require.NoError(t, err)
}

func TestValidateSessionMapsBanned(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newAuthFixture(t, db)
	ctx := context.Background()

	_, err := svc.Register(ctx, "blocked@example.com", "sup3r-secret", "")
	require.NoError(t, err)
	code := storedVerificationCode(t, db, "blocked@example.com")
	result, err := svc.VerifyEmail(ctx, "blocked@example.com", code)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "blocked@example.com").
		Update("banned", true).Error)

	_, _, err = svc.ValidateSession(ctx, result.SessionToken)
	requireAppError(t, err, "ACCOUNT_BANNED")

	_, _, err = svc.ValidateSession(ctx, "not-a-token")
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
}
