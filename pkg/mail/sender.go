package mail

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/syriashof/shof/pkg/logger"
	"github.com/syriashof/shof/pkg/metrics"
)

const (
	defaultMaxAttempts    = 3
	defaultAttemptTimeout = 15 * time.Second
	defaultBackoffStep    = 2 * time.Second
)

// Sender dispatches email asynchronously so that HTTP handlers never block on
// delivery. Transient failures are retried with linear backoff. Exhausting all
// attempts is logged and otherwise swallowed; registration and login must
// succeed even when the mail relay is down.
type Sender struct {
	mailer         Mailer
	maxAttempts    int
	attemptTimeout time.Duration
	backoffStep    time.Duration
	sleep          func(time.Duration)
	log            *zap.Logger
}

// SenderOption customises the Sender.
type SenderOption func(*Sender)

// WithMaxAttempts overrides the delivery attempt limit.
func WithMaxAttempts(n int) SenderOption {
	return func(s *Sender) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithAttemptTimeout bounds each individual delivery attempt.
func WithAttemptTimeout(d time.Duration) SenderOption {
	return func(s *Sender) {
		if d > 0 {
			s.attemptTimeout = d
		}
	}
}

// WithBackoffStep sets the linear backoff increment between attempts.
func WithBackoffStep(d time.Duration) SenderOption {
	return func(s *Sender) {
		if d >= 0 {
			s.backoffStep = d
		}
	}
}

// WithSleep injects the inter-attempt wait, primarily for tests.
func WithSleep(fn func(time.Duration)) SenderOption {
	return func(s *Sender) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// NewSender wraps a Mailer with retry and async-dispatch behaviour.
func NewSender(mailer Mailer, opts ...SenderOption) *Sender {
	s := &Sender{
		mailer:         mailer,
		maxAttempts:    defaultMaxAttempts,
		attemptTimeout: defaultAttemptTimeout,
		backoffStep:    defaultBackoffStep,
		sleep:          time.Sleep,
		log:            logger.WithModule("mail"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Dispatch queues a message for background delivery and returns immediately.
func (s *Sender) Dispatch(msg Message) {
	if s == nil || s.mailer == nil {
		return
	}
	go s.deliver(msg)
}

// Deliver sends a message synchronously, retrying transient failures with
// linear backoff. Used directly by tests and by Dispatch's goroutine.
func (s *Sender) Deliver(msg Message) error {
	return s.deliver(msg)
}

func (s *Sender) deliver(msg Message) error {
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.attemptTimeout)
		err := s.mailer.Send(ctx, msg)
		cancel()

		if err == nil {
			metrics.EmailDeliveries.WithLabelValues("sent").Inc()
			return nil
		}

		if errors.Is(err, ErrSMTPDisabled) {
			// Not a failure: delivery is intentionally off in this deployment.
			s.log.Debug("email delivery disabled", zap.String("subject", msg.Subject))
			return nil
		}

		lastErr = err
		if attempt < s.maxAttempts {
			metrics.EmailDeliveries.WithLabelValues("retried").Inc()
			s.sleep(time.Duration(attempt) * s.backoffStep)
		}
	}

	metrics.EmailDeliveries.WithLabelValues("failed").Inc()
	s.log.Error("email delivery failed",
		zap.String("subject", msg.Subject),
		zap.Int("attempts", s.maxAttempts),
		zap.Error(lastErr),
	)
	return lastErr
}
