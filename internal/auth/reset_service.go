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
)

// DefaultResetTTL is how long a reset link stays valid.
const DefaultResetTTL = time.Hour

const resetTokenLength = 32

var (
	// ErrResetInvalidToken covers unknown, used, and expired tokens alike so
	// callers cannot distinguish them.
	ErrResetInvalidToken = errors.New("reset: invalid or expired token")
)

// ResetConfig describes tunable behaviour for the ResetService.
type ResetConfig struct {
	TTL   time.Duration
	Clock func() time.Time
}

// ResetService issues and redeems single-use password reset tokens.
// Redeeming a token revokes every session the account holds.
type ResetService struct {
	db       *gorm.DB
	sessions *SessionService
	ttl      time.Duration
	now      func() time.Time
}

// NewResetService constructs the reset token manager.
func NewResetService(db *gorm.DB, sessions *SessionService, cfg ResetConfig) (*ResetService, error) {
	if db == nil {
		return nil, errors.New("reset service: db is required")
	}
	if sessions == nil {
		return nil, errors.New("reset service: session service is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &ResetService{db: db, sessions: sessions, ttl: ttl, now: clock}, nil
}

// Issue creates a reset token for the verified account behind the
// email. Unknown and unverified accounts both return (nil, nil):
// callers respond identically either way so the endpoint cannot be
// used to probe for accounts, and a mailbox that never confirmed the
// signup gets no reset link.
func (r *ResetService) Issue(ctx context.Context, email string) (*models.PasswordReset, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, errors.New("reset service: email is required")
	}

	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reset service: find user: %w", err)
	}
	if !user.IsVerified {
		return nil, nil
	}

	token, err := crypto.GenerateToken(resetTokenLength)
	if err != nil {
		return nil, fmt.Errorf("reset service: generate token: %w", err)
	}

	reset := &models.PasswordReset{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: r.now().Add(r.ttl),
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One live token per account: earlier unused tokens die here.
		if err := tx.Where("user_id = ? AND used = ?", user.ID, false).
			Delete(&models.PasswordReset{}).Error; err != nil {
			return err
		}
		return tx.Create(reset).Error
	})
	if err != nil {
		return nil, fmt.Errorf("reset service: store token: %w", err)
	}

	return reset, nil
}

// Redeem consumes a token and replaces the account password. The token
// is marked used, the password is re-hashed, and every session the
// account holds is revoked, all inside one transaction.
func (r *ResetService) Redeem(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrResetInvalidToken
	}

	hash, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("reset service: hash password: %w", err)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset models.PasswordReset
		err := tx.Where("token = ? AND used = ?", token, false).Take(&reset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetInvalidToken
		}
		if err != nil {
			return fmt.Errorf("reset service: find token: %w", err)
		}

		if r.now().After(reset.ExpiresAt) {
			return ErrResetInvalidToken
		}

		if err := tx.Model(&models.PasswordReset{}).
			Where("id = ?", reset.ID).
			Update("used", true).Error; err != nil {
			return fmt.Errorf("reset service: consume token: %w", err)
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", reset.UserID).
			Update("password", hash).Error; err != nil {
			return fmt.Errorf("reset service: update password: %w", err)
		}

		if err := tx.Where("user_id = ?", reset.UserID).
			Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("reset service: revoke sessions: %w", err)
		}

		return nil
	})
}

// CleanupExpired removes reset rows that are used or past expiry.
func (r *ResetService) CleanupExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR used = ?", r.now(), true).
		Delete(&models.PasswordReset{})
	if result.Error != nil {
		return 0, fmt.Errorf("reset service: cleanup tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
