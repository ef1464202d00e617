package authsvc

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/corray333/shopline/notify/internal/service/models/ratelimit"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Key prefixes keep the two flows on separate budgets: exhausting
// verification attempts must not lock password resets, and vice versa.
const (
	verifyKeyPrefix = "verify:"
	resetKeyPrefix  = "reset:"
)

// limiter is the rate limiting surface AuthService needs.
type limiter interface {
	Check(ctx context.Context, key string, maxAttempts int, window time.Duration) (ratelimit.Result, error)
	Reset(ctx context.Context, key string) error
}

// codeSender delivers issued codes through the external channel. Delivery
// is best-effort: a failed send is logged, not surfaced.
type codeSender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// AuthService throttles verification-code and password-reset issuance.
type AuthService struct {
	limiter     limiter
	sender      codeSender
	maxAttempts int
	window      time.Duration
}

// option is a function that configures the AuthService.
type option func(*AuthService)

// MustNewAuthService creates a new AuthService.
func MustNewAuthService(opts ...option) *AuthService {
	maxAttempts := viper.GetInt("auth.rate_limit.max_attempts")
	if maxAttempts == 0 {
		maxAttempts = 3
	}

	windowMinutes := viper.GetInt("auth.rate_limit.window_minutes")
	if windowMinutes == 0 {
		windowMinutes = 60
	}

	s := &AuthService{
		sender:      logSender{},
		maxAttempts: maxAttempts,
		window:      time.Duration(windowMinutes) * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.limiter == nil {
		panic("authsvc: rate limiter is not configured")
	}

	return s
}

// WithLimiter sets the rate limiter for the AuthService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLimiter(l limiter) option {
	return func(s *AuthService) {
		s.limiter = l
	}
}

// WithSender sets the code delivery channel for the AuthService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSender(sender codeSender) option {
	return func(s *AuthService) {
		s.sender = sender
	}
}

// RequestVerificationCode issues a verification code unless the caller has
// exhausted their window. A denied result is returned as data, not as an
// error: the boundary translates it into a retry-after response.
func (s *AuthService) RequestVerificationCode(
	ctx context.Context,
	email string,
) (ratelimit.Result, error) {
	email = normalizeEmail(email)

	res, err := s.limiter.Check(ctx, verifyKeyPrefix+email, s.maxAttempts, s.window)
	if err != nil {
		return ratelimit.Result{}, err
	}
	if !res.Allowed {
		return res, nil
	}

	code, err := generateCode()
	if err != nil {
		return ratelimit.Result{}, err
	}

	if err := s.sender.SendVerificationCode(ctx, email, code); err != nil {
		slog.Error("Failed to send verification code", "email", email, "error", err)
	}

	return res, nil
}

// RequestPasswordReset issues a password reset token under its own budget.
func (s *AuthService) RequestPasswordReset(
	ctx context.Context,
	email string,
) (ratelimit.Result, error) {
	email = normalizeEmail(email)

	res, err := s.limiter.Check(ctx, resetKeyPrefix+email, s.maxAttempts, s.window)
	if err != nil {
		return ratelimit.Result{}, err
	}
	if !res.Allowed {
		return res, nil
	}

	token := uuid.NewString()

	if err := s.sender.SendPasswordReset(ctx, email, token); err != nil {
		slog.Error("Failed to send password reset", "email", email, "error", err)
	}

	return res, nil
}

// ConfirmVerified clears the verification budget after a successful
// verification, so the user's next legitimate request starts fresh.
func (s *AuthService) ConfirmVerified(ctx context.Context, email string) error {
	return s.limiter.Reset(ctx, verifyKeyPrefix+normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}

// logSender stands in for the external delivery channel.
type logSender struct{}

func (logSender) SendVerificationCode(_ context.Context, email, _ string) error {
	slog.Info("Verification code issued", "email", email)

	return nil
}

func (logSender) SendPasswordReset(_ context.Context, email, _ string) error {
	slog.Info("Password reset issued", "email", email)

	return nil
}
