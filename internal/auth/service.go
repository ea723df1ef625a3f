package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/syriashof/shof/internal/models"
	"github.com/syriashof/shof/pkg/crypto"
	apperrors "github.com/syriashof/shof/pkg/errors"
	"github.com/syriashof/shof/pkg/mail"
	"github.com/syriashof/shof/pkg/metrics"
	"github.com/syriashof/shof/pkg/validator"
)

// MinPasswordLength is enforced at registration, reset, and change.
const MinPasswordLength = 8

// Config wires the orchestrator's collaborators and deployment values.
type Config struct {
	BaseURL     string // public origin used to build reset links
	FromAddress string
	Clock       func() time.Time
}

// Result is what a successful authentication flow hands back to the API
// layer. NeedsVerification means the account exists but the email is
// not confirmed yet; no session is issued in that state.
type Result struct {
	SessionToken      string
	User              *models.User
	NeedsVerification bool
}

// Service orchestrates the account lifecycle: registration, email
// verification, login, logout, password recovery, and password change.
type Service struct {
	db           *gorm.DB
	sessions     *SessionService
	verification *VerificationService
	resets       *ResetService
	sender       *mail.Sender
	baseURL      string
	from         string
	now          func() time.Time
}

// NewService assembles the orchestrator from its collaborators.
func NewService(db *gorm.DB, sessions *SessionService, verification *VerificationService, resets *ResetService, sender *mail.Sender, cfg Config) (*Service, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if sessions == nil || verification == nil || resets == nil {
		return nil, errors.New("auth service: all collaborators are required")
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &Service{
		db:           db,
		sessions:     sessions,
		verification: verification,
		resets:       resets,
		sender:       sender,
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		from:         strings.TrimSpace(cfg.FromAddress),
		now:          clock,
	}, nil
}

// Register creates an unverified account and emails a confirmation
// code. Registering an email that already holds an unverified account
// re-issues the code instead of failing.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*Result, error) {
	email = normalizeEmail(email)
	if err := validator.ValidateVar(email, "required,email"); err != nil {
		return nil, apperrors.NewBadRequest("Invalid email address")
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&existing).Error
	switch {
	case err == nil:
		if existing.IsVerified {
			return nil, apperrors.NewConflict("Email already registered")
		}
		// Unfinished signup: refresh the code and nudge again.
		if err := s.sendVerificationCode(ctx, &existing); err != nil {
			return nil, err
		}
		return &Result{User: &existing, NeedsVerification: true}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fresh registration
	default:
		return nil, apperrors.Wrap(err, "Internal server error")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(err, "Internal server error")
	}

	if strings.TrimSpace(displayName) == "" {
		displayName = email[:strings.Index(email, "@")]
	}

	user := &models.User{
		Email:       email,
		Password:    hash,
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, apperrors.Wrap(err, "Internal server error")
	}

	if err := s.sendVerificationCode(ctx, user); err != nil {
		return nil, err
	}

	return &Result{User: user, NeedsVerification: true}, nil
}

// Login checks credentials and issues a session. Unverified accounts
// get a fresh code and a needs-verification result instead of a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	email = normalizeEmail(email)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "Internal server error")
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Banned {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, bannedError(&user)
	}

	if !user.IsVerified {
		metrics.AuthAttempts.WithLabelValues("needs_verification").Inc()
		if err := s.sendVerificationCode(ctx, &user); err != nil {
			return nil, err
		}
		return &Result{User: &user, NeedsVerification: true}, nil
	}

	session, err := s.sessions.Create(ctx, &user)
	if err != nil {
		return nil, apperrors.Wrap(err, "Internal server error")
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &Result{SessionToken: session.Token, User: &user}, nil
}

// VerifyEmail confirms a code and signs the user in.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (*Result, error) {
	user, err := s.verification.Confirm(ctx, email, code)
	switch {
	case err == nil:
		// verified below
	case errors.Is(err, ErrAlreadyVerified):
		return nil, apperrors.NewConflict("Email already verified")
	case errors.Is(err, ErrVerificationExpired):
		return nil, apperrors.NewBadRequest("Verification code expired")
	case errors.Is(err, ErrVerificationMismatch), errors.Is(err, ErrVerificationUserNotFound):
		// Unknown accounts get the same answer as wrong codes.
		return nil, apperrors.NewBadRequest("Invalid verification code")
	default:
		return nil, apperrors.Wrap(err, "Internal server error")
	}

	session, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, apperrors.Wrap(err, "Internal server error")
	}

	return &Result{SessionToken: session.Token, User: user}, nil
}

// ResendCode issues a fresh verification code for an unverified account.
func (s *Service) ResendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Same response whether the account exists or not.
		return nil
	}
	if err != nil {
		return apperrors.Wrap(err, "Internal server error")
	}

	if user.IsVerified {
		return apperrors.NewConflict("Email already verified")
	}

	return s.sendVerificationCode(ctx, &user)
}

// ForgotPassword emails a reset link. The response is identical whether
// or not the account exists.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validator.ValidateVar(email, "required,email"); err != nil {
		return apperrors.NewBadRequest("Invalid email address")
	}

	reset, err := s.resets.Issue(ctx, email)
	if err != nil {
		return apperrors.Wrap(err, "Internal server error")
	}
	if reset == nil {
		return nil
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, reset.Token)
	s.dispatch(mail.Message{
		From:    s.from,
		To:      []string{reset.Email},
		Subject: mail.SubjectPasswordReset,
		Body:    mail.PasswordResetBody(link),
		HTML:    true,
	})
	return nil
}

// ResetPassword redeems a token and sets a new password. Every session
// of the account is revoked as part of the redemption.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperrors.NewBadRequest(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	err := s.resets.Redeem(ctx, token, newPassword)
	if errors.Is(err, ErrResetInvalidToken) {
		return apperrors.NewBadRequest("Invalid or expired reset token")
	}
	if err != nil {
		return apperrors.Wrap(err, "Internal server error")
	}
	return nil
}

// ChangePassword swaps the password of a signed-in user and signs out
// every other device.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, session *models.Session, currentPassword, newPassword string) error {
	if user == nil || session == nil {
		return apperrors.ErrUnauthorized
	}

	if !crypto.VerifyPassword(user.Password, currentPassword) {
		return apperrors.ErrInvalidCredentials.WithMessage("Current password is incorrect")
	}
	if len(newPassword) < MinPasswordLength {
		return apperrors.NewBadRequest(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return apperrors.Wrap(err, "Internal server error")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("password", hash).Error; err != nil {
			return err
		}
		// The initiating device stays signed in.
		return tx.Where("user_id = ? AND id <> ?", user.ID, session.ID).
			Delete(&models.Session{}).Error
	})
	if err != nil {
		return apperrors.Wrap(err, "Internal server error")
	}
	return nil
}

// ValidateSession resolves a bearer token, translating service-level
// failures into renderable API errors.
func (s *Service) ValidateSession(ctx context.Context, token string) (*models.User, *models.Session, error) {
	user, session, err := s.sessions.Validate(ctx, token)
	switch {
	case err == nil:
		return user, session, nil
	case errors.Is(err, ErrSessionUserBanned):
		return nil, nil, bannedError(user)
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired), errors.Is(err, ErrSessionUserMissing):
		return nil, nil, apperrors.ErrInvalidSession
	default:
		return nil, nil, apperrors.Wrap(err, "Internal server error")
	}
}

// Logout revokes the session behind the token; unknown tokens succeed.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return apperrors.Wrap(err, "Internal server error")
	}
	return nil
}

func (s *Service) sendVerificationCode(ctx context.Context, user *models.User) error {
	code, err := s.verification.Issue(ctx, user.ID)
	if err != nil {
		return apperrors.Wrap(err, "Internal server error")
	}

	s.dispatch(mail.Message{
		From:    s.from,
		To:      []string{user.Email},
		Subject: mail.SubjectVerification,
		Body:    mail.VerificationBody(code),
		HTML:    true,
	})
	return nil
}

func (s *Service) dispatch(msg mail.Message) {
	if s.sender != nil {
		s.sender.Dispatch(msg)
	}
}

func bannedError(user *models.User) *apperrors.AppError {
	if user != nil && strings.TrimSpace(user.BanReason) != "" {
		return apperrors.ErrAccountBanned.WithMessage("Account banned: " + user.BanReason)
	}
	return apperrors.ErrAccountBanned
}
