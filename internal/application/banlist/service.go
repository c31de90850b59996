package banlist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-auth-gate/internal/domain"
	"github.com/go-auth-gate/internal/pkg/id"
)

// BanStore is the subset of the ban-list store the registry needs.
type BanStore interface {
	IsIPBanned(ctx context.Context, ip string) (bool, error)
	IsEmailBanned(ctx context.Context, email string) (bool, error)
	PutIP(ctx context.Context, ban *domain.BannedIP) error
	DeleteIP(ctx context.Context, ip string) error
	PutEmail(ctx context.Context, ban *domain.BannedEmail) error
	DeleteEmail(ctx context.Context, email string) error
}

// ProfileStore reads and flips the active flag on accounts.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// SessionStore terminates live sessions on account-level blocks.
type SessionStore interface {
	DisableByUser(ctx context.Context, userID string) error
}

// AuditStore records ban-management actions.
type AuditStore interface {
	Put(ctx context.Context, entry *domain.AuditLog) error
}

type Service interface {
	// CheckBlocked runs the three block-list checks in order (IP, email,
	// account-active) and returns the first positive match. Empty inputs
	// skip their check: IP resolution is best-effort and its absence must
	// never block a legitimate user.
	CheckBlocked(ctx context.Context, ip, email, accountID string) (*domain.BlockResult, error)

	BanIP(ctx context.Context, ip, note, actorID string) error
	UnbanIP(ctx context.Context, ip, actorID string) error
	BanEmail(ctx context.Context, email, note, actorID string) error
	UnbanEmail(ctx context.Context, email, actorID string) error
	Deactivate(ctx context.Context, userID, actorID string) error
	Reactivate(ctx context.Context, userID, actorID string) error
}

type Deps struct {
	BanRepo     BanStore
	ProfileRepo ProfileStore
	SessionRepo SessionStore
	AuditRepo   AuditStore
}

type service struct {
	bans     BanStore
	profiles ProfileStore
	sessions SessionStore
	audit    AuditStore
}

func NewService(deps Deps) Service {
	return &service{
		bans:     deps.BanRepo,
		profiles: deps.ProfileRepo,
		sessions: deps.SessionRepo,
		audit:    deps.AuditRepo,
	}
}

func (s *service) CheckBlocked(ctx context.Context, ip, email, accountID string) (*domain.BlockResult, error) {
	if ip != "" {
		banned, err := s.bans.IsIPBanned(ctx, ip)
		if err != nil {
			return nil, fmt.Errorf("check ip ban: %w", err)
		}
		if banned {
			return &domain.BlockResult{Blocked: true, Reason: domain.ReasonIPBanned}, nil
		}
	}

	if email != "" {
		banned, err := s.bans.IsEmailBanned(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("check email ban: %w", err)
		}
		if banned {
			// A banned account must not retain a live session.
			if accountID != "" {
				s.forceSignOut(ctx, accountID)
			}
			return &domain.BlockResult{Blocked: true, Reason: domain.ReasonEmailBanned}, nil
		}
	}

	if accountID != "" {
		p, err := s.profiles.Get(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		if !p.Active {
			s.forceSignOut(ctx, accountID)
			return &domain.BlockResult{Blocked: true, Reason: domain.ReasonAccountDeactivated}, nil
		}
	}

	return &domain.BlockResult{Blocked: false}, nil
}

func (s *service) forceSignOut(ctx context.Context, userID string) {
	if err := s.sessions.DisableByUser(ctx, userID); err != nil {
		slog.Warn("failed to terminate sessions for blocked account", "user_id", userID, "err", err)
	}
}

func (s *service) BanIP(ctx context.Context, ip, note, actorID string) error {
	if ip == "" {
		return fmt.Errorf("ip required: %w", domain.ErrBadRequest)
	}
	ban := &domain.BannedIP{IPAddress: ip, Note: note, CreatedAt: time.Now().UTC()}
	if err := s.bans.PutIP(ctx, ban); err != nil {
		return err
	}
	s.record(ctx, actorID, domain.ActionBanIP, "IP address banned", "", ip)
	return nil
}

func (s *service) UnbanIP(ctx context.Context, ip, actorID string) error {
	if err := s.bans.DeleteIP(ctx, ip); err != nil {
		return err
	}
	s.record(ctx, actorID, domain.ActionUnbanIP, "IP address unbanned", "", ip)
	return nil
}

func (s *service) BanEmail(ctx context.Context, email, note, actorID string) error {
	if email == "" {
		return fmt.Errorf("email required: %w", domain.ErrBadRequest)
	}
	ban := &domain.BannedEmail{Email: email, Note: note, CreatedAt: time.Now().UTC()}
	if err := s.bans.PutEmail(ctx, ban); err != nil {
		return err
	}
	s.record(ctx, actorID, domain.ActionBanEmail, "email banned", email, "")
	return nil
}

func (s *service) UnbanEmail(ctx context.Context, email, actorID string) error {
	if err := s.bans.DeleteEmail(ctx, email); err != nil {
		return err
	}
	s.record(ctx, actorID, domain.ActionUnbanEmail, "email unbanned", email, "")
	return nil
}

func (s *service) Deactivate(ctx context.Context, userID, actorID string) error {
	if err := s.profiles.Update(ctx, userID, map[string]interface{}{"active": false}); err != nil {
		return err
	}
	// Deactivation takes effect immediately, not on next ban check.
	s.forceSignOut(ctx, userID)
	s.record(ctx, actorID, domain.ActionDeactivate, "account deactivated", "", "")
	return nil
}

func (s *service) Reactivate(ctx context.Context, userID, actorID string) error {
	if err := s.profiles.Update(ctx, userID, map[string]interface{}{"active": true}); err != nil {
		return err
	}
	s.record(ctx, actorID, domain.ActionReactivate, "account reactivated", "", "")
	return nil
}

func (s *service) record(ctx context.Context, actorID, action, message, email, ip string) {
	entry := &domain.AuditLog{
		LogID:      id.New(),
		UserID:     actorID,
		ActionType: action,
		Message:    message,
		Email:      email,
		IP:         ip,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.audit.Put(ctx, entry); err != nil {
		slog.Warn("failed to write audit entry", "action", action, "err", err)
	}
}
