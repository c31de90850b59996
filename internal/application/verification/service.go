package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-auth-gate/internal/domain"
	"github.com/go-auth-gate/internal/infrastructure/smtp"
	"github.com/go-auth-gate/internal/pkg/id"
)

// CodeStore is the subset of the verification-code store the service needs.
type CodeStore interface {
	Put(ctx context.Context, c *domain.VerificationCode) error
	ListUnverified(ctx context.Context, email string) ([]domain.VerificationCode, error)
	DeleteUnverified(ctx context.Context, email string) error
	MarkVerified(ctx context.Context, email, codeID string) error
	IncrementAttempts(ctx context.Context, email, codeID string) (int, error)
}

type Service interface {
	// Issue generates a fresh 6-digit code for (email, flow), supersedes any
	// prior unverified code for the email, persists the new row and delivers
	// it by email. The resend cooldown is enforced here, server-side.
	Issue(ctx context.Context, email string, flow domain.Flow, userID string) error

	// Validate matches an unverified, unexpired code and marks it verified.
	// Every failure mode collapses to ErrCodeInvalid.
	Validate(ctx context.Context, email, code string, flow domain.Flow) (*domain.VerificationCode, error)
}

type Deps struct {
	CodeRepo    CodeStore
	Mailer      smtp.Mailer
	CodeTTL     time.Duration
	Cooldown    time.Duration
	MaxAttempts int
}

type service struct {
	codes       CodeStore
	mailer      smtp.Mailer
	codeTTL     time.Duration
	cooldown    time.Duration
	maxAttempts int
}

func NewService(deps Deps) Service {
	return &service{
		codes:       deps.CodeRepo,
		mailer:      deps.Mailer,
		codeTTL:     deps.CodeTTL,
		cooldown:    deps.Cooldown,
		maxAttempts: deps.MaxAttempts,
	}
}

func (s *service) Issue(ctx context.Context, email string, flow domain.Flow, userID string) error {
	existing, err := s.codes.ListUnverified(ctx, email)
	if err != nil {
		return fmt.Errorf("list existing codes: %w", err)
	}
	now := time.Now()
	for _, c := range existing {
		if now.Unix()-c.CreatedAt < int64(s.cooldown.Seconds()) && c.ExpiresAt >= now.Unix() {
			return fmt.Errorf("code issued %ds ago: %w", now.Unix()-c.CreatedAt, domain.ErrCooldown)
		}
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	// Delete-then-insert keeps the single-active-code invariant. If two
	// issues race, last writer wins and the loser's code is orphaned, never
	// matchable alongside the winner's.
	if err := s.codes.DeleteUnverified(ctx, email); err != nil {
		return fmt.Errorf("supersede prior codes: %w", err)
	}

	row := &domain.VerificationCode{
		Email:     email,
		CodeID:    id.New(),
		Code:      code,
		Flow:      flow,
		UserID:    userID,
		ExpiresAt: now.Add(s.codeTTL).Unix(),
		Verified:  false,
		CreatedAt: now.Unix(),
	}
	if err := s.codes.Put(ctx, row); err != nil {
		return fmt.Errorf("persist code: %w", err)
	}

	if err := s.mailer.SendVerificationCode(email, code, flow); err != nil {
		slog.Warn("verification email delivery failed", "email", email, "flow", flow, "err", err)
		// Drop the undelivered row so it does not arm the resend cooldown;
		// the caller is expected to let the user retry issuance right away.
		if derr := s.codes.DeleteUnverified(ctx, email); derr != nil {
			slog.Warn("failed to remove undelivered code", "email", email, "err", derr)
		}
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

func (s *service) Validate(ctx context.Context, email, code string, flow domain.Flow) (*domain.VerificationCode, error) {
	rows, err := s.codes.ListUnverified(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}

	now := time.Now().Unix()
	var match *domain.VerificationCode
	var live *domain.VerificationCode
	for i := range rows {
		c := &rows[i]
		if c.ExpiresAt < now {
			continue
		}
		live = c
		if c.Code == code && c.Flow == flow {
			match = c
		}
	}

	if match == nil {
		// Wrong guesses burn an attempt on the live code, whichever it is.
		if live != nil {
			if _, err := s.codes.IncrementAttempts(ctx, email, live.CodeID); err != nil {
				slog.Warn("failed to increment code attempts", "email", email, "err", err)
			}
		}
		return nil, domain.ErrCodeInvalid
	}

	if s.maxAttempts > 0 && match.Attempts >= s.maxAttempts {
		return nil, domain.ErrCodeInvalid
	}

	// The conditional update is the single-use guarantee: a replay of the
	// same code after a successful validate fails here.
	if err := s.codes.MarkVerified(ctx, email, match.CodeID); err != nil {
		return nil, err
	}
	match.Verified = true
	return match, nil
}

// generateCode returns a uniformly random 6-digit decimal code, leading
// zeros preserved.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
