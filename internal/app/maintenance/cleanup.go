package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/syriashof/shof/internal/auth"
	"github.com/syriashof/shof/internal/services"
	"github.com/syriashof/shof/pkg/logger"
)

const (
	defaultSessionSpec = "@hourly"
	defaultTokenSpec   = "@daily"
	defaultAuditSpec   = "@daily"
)

// Cleaner coordinates background maintenance: purging expired sessions,
// used and expired reset tokens, stale verification codes, and old
// audit rows. Any nil dependency skips the corresponding job.
type Cleaner struct {
	sessions     *iauth.SessionService
	resets       *iauth.ResetService
	verification *iauth.VerificationService
	audit        *services.AuditService
	cron         *cron.Cron
	log          *zap.Logger

	sessionSchedule string
	tokenSchedule   string
	auditSchedule   string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithTokenSchedule overrides the cron specification for token and code cleanup.
func WithTokenSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.tokenSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(sessions *iauth.SessionService, resets *iauth.ResetService, verification *iauth.VerificationService, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		sessions:        sessions,
		resets:          resets,
		verification:    verification,
		audit:           audit,
		sessionSchedule: defaultSessionSpec,
		tokenSchedule:   defaultTokenSpec,
		auditSchedule:   defaultAuditSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			if _, err := c.sessions.CleanupExpired(context.Background()); err != nil {
				c.log.Warn("session cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.resets != nil || c.verification != nil {
		if _, err := c.cron.AddFunc(c.tokenSchedule, func() {
			ctx := context.Background()
			if c.resets != nil {
				if _, err := c.resets.CleanupExpired(ctx); err != nil {
					c.log.Warn("reset token cleanup failed", zap.Error(err))
				}
			}
			if c.verification != nil {
				if _, err := c.verification.CleanupStale(ctx); err != nil {
					c.log.Warn("verification code cleanup failed", zap.Error(err))
				}
			}
		}); err != nil {
			return err
		}
	}

	if c.audit != nil {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			if _, err := c.audit.CleanupOld(context.Background()); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.resets != nil {
		if _, err := c.resets.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.verification != nil {
		if _, err := c.verification.CleanupStale(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.audit != nil {
		if _, err := c.audit.CleanupOld(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// SpecEvery formats a duration as a cron @every spec so configs can
// express schedules as durations too.
func SpecEvery(d time.Duration) string {
	return "@every " + d.String()
}
