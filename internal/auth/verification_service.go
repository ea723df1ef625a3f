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

// DefaultVerificationTTL is how long an emailed code stays valid.
const DefaultVerificationTTL = 10 * time.Minute

const verificationCodeDigits = 6

var (
	// ErrVerificationUserNotFound indicates no account exists for the email.
	ErrVerificationUserNotFound = errors.New("verification: user not found")
	// ErrVerificationMismatch indicates the submitted code does not match.
	ErrVerificationMismatch = errors.New("verification: code mismatch")
	// ErrVerificationExpired indicates the code's window has lapsed.
	ErrVerificationExpired = errors.New("verification: code expired")
	// ErrAlreadyVerified indicates the account needs no verification.
	ErrAlreadyVerified = errors.New("verification: already verified")
)

// VerificationConfig describes tunable behaviour for the VerificationService.
type VerificationConfig struct {
	TTL   time.Duration
	Clock func() time.Time
}

// VerificationService issues and checks the 6-digit email confirmation
// codes stored on the user row.
type VerificationService struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewVerificationService constructs the code issuer.
func NewVerificationService(db *gorm.DB, cfg VerificationConfig) (*VerificationService, error) {
	if db == nil {
		return nil, errors.New("verification service: db is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &VerificationService{db: db, ttl: ttl, now: clock}, nil
}

// Issue generates a fresh code for the user and stores it with its
// expiry, replacing any earlier code. Returns the code for emailing.
func (v *VerificationService) Issue(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("verification service: user id is required")
	}

	code, err := crypto.GenerateNumericCode(verificationCodeDigits)
	if err != nil {
		return "", fmt.Errorf("verification service: generate code: %w", err)
	}

	expires := v.now().Add(v.ttl)
	result := v.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"verification_code":    code,
			"verification_expires": expires,
		})
	if result.Error != nil {
		return "", fmt.Errorf("verification service: store code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", ErrVerificationUserNotFound
	}

	return code, nil
}

// Confirm checks a submitted code against the stored one and, when it
// matches, marks the account verified and clears the code in one
// transaction.
func (v *VerificationService) Confirm(ctx context.Context, email, code string) (*models.User, error) {
	// The code is compared exactly as submitted; only the email is
	// normalised.
	email = normalizeEmail(email)

	var user models.User
	err := v.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVerificationUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("verification service: find user: %w", err)
	}

	if user.IsVerified {
		return &user, ErrAlreadyVerified
	}

	if user.VerificationCode == nil || *user.VerificationCode != code {
		return nil, ErrVerificationMismatch
	}

	if user.VerificationExpires == nil || v.now().After(*user.VerificationExpires) {
		return nil, ErrVerificationExpired
	}

	err = v.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{
				"is_verified":          true,
				"verification_code":    nil,
				"verification_expires": nil,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("verification service: mark verified: %w", err)
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationExpires = nil
	return &user, nil
}

// CleanupStale clears codes whose expiry has long passed so stale
// secrets do not linger on unverified accounts.
func (v *VerificationService) CleanupStale(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := v.db.WithContext(ctx).Model(&models.User{}).
		Where("verification_expires < ?", v.now()).
		Updates(map[string]any{
			"verification_code":    nil,
			"verification_expires": nil,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("verification service: cleanup stale codes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
