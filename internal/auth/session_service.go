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
	"github.com/syriashof/shof/pkg/metrics"
)

// DefaultSessionTTL is the fallback session lifetime.
const DefaultSessionTTL = 30 * 24 * time.Hour

// DefaultSessionTokenLength is the random byte count behind each token.
const DefaultSessionTokenLength = 32

var (
	// ErrSessionNotFound indicates that no session matches the supplied token.
	ErrSessionNotFound = errors.New("session: not found")
	// ErrSessionExpired signals that the session lapsed. The row is deleted
	// as a side effect of the lookup that discovered it.
	ErrSessionExpired = errors.New("session: expired")
	// ErrSessionUserBanned marks a session whose owner was banned after login.
	ErrSessionUserBanned = errors.New("session: user banned")
	// ErrSessionUserMissing marks a session whose owner no longer exists.
	ErrSessionUserMissing = errors.New("session: user deleted")
)

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	TTL         time.Duration
	TokenLength int
	Clock       func() time.Time
}

// SessionService manages creation, validation, and revocation of the
// opaque bearer tokens handed out at login. Tokens are random strings
// checked against the database on every request, so bans and deletions
// take effect immediately.
type SessionService struct {
	db       *gorm.DB
	ttl      time.Duration
	tokenLen int
	now      func() time.Time
}

// NewSessionService constructs a session manager backed by the provided database.
func NewSessionService(db *gorm.DB, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	length := cfg.TokenLength
	if length <= 0 {
		length = DefaultSessionTokenLength
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		db:       db,
		ttl:      ttl,
		tokenLen: length,
		now:      clock,
	}, nil
}

// Create issues a fresh session for the user.
func (s *SessionService) Create(ctx context.Context, user *models.User) (*models.Session, error) {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return nil, errors.New("session service: user is required")
	}

	token, err := crypto.GenerateToken(s.tokenLen)
	if err != nil {
		return nil, fmt.Errorf("session service: generate token: %w", err)
	}

	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: s.now().Add(s.ttl),
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("session service: create session: %w", err)
	}

	metrics.ActiveSessions.Inc()
	return session, nil
}

// Validate resolves a token to its session and owner. Expired rows are
// deleted on sight, and the owner's banned flag is re-checked on every
// call so a ban invalidates live sessions immediately.
func (s *SessionService) Validate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil, ErrSessionNotFound
	}

	var session models.Session
	err := s.db.WithContext(ctx).Where("token = ?", token).Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("session service: find session: %w", err)
	}

	if session.Expired(s.now()) {
		if delErr := s.db.WithContext(ctx).Delete(&session).Error; delErr == nil {
			metrics.ActiveSessions.Dec()
		}
		return nil, nil, ErrSessionExpired
	}

	var user models.User
	err = s.db.WithContext(ctx).Where("id = ?", session.UserID).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = s.db.WithContext(ctx).Delete(&session).Error
		return nil, nil, ErrSessionUserMissing
	}
	if err != nil {
		return nil, nil, fmt.Errorf("session service: find user: %w", err)
	}

	if user.Banned {
		return &user, &session, ErrSessionUserBanned
	}

	return &user, &session, nil
}

// Revoke deletes a session by token. Revoking a token that is already
// gone is not an error.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	result := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("session service: revoke session: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}
	return nil
}

// RevokeAllForUser deletes every session belonging to a user. Used when
// a password is reset or an account is banned or deleted.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("session service: user id is required")
	}

	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("session service: revoke user sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}
	return nil
}

// RevokeAllExcept deletes every session of a user but the named one,
// keeping the device that initiated a password change signed in.
func (s *SessionService) RevokeAllExcept(ctx context.Context, userID, keepSessionID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("session service: user id is required")
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND id <> ?", userID, keepSessionID).
		Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("session service: revoke other sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}
	return nil
}

// CleanupExpired removes sessions whose expiry has passed.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session service: cleanup expired sessions: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}
	return result.RowsAffected, nil
}
