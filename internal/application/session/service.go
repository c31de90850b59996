package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-auth-gate/internal/domain"
	pkgtoken "github.com/go-auth-gate/internal/pkg/token"
)

// SessionStore is the subset of the session store this service needs.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

type TokenSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type Service interface {
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, refreshToken string) (bearer, newRefreshToken string, err error)
}

type Deps struct {
	SessionRepo SessionStore
	ProfileRepo ProfileStore
	Signer      TokenSigner
	RefreshDur  time.Duration
}

type service struct {
	sessions   SessionStore
	profiles   ProfileStore
	signer     TokenSigner
	refreshDur time.Duration
}

func NewService(deps Deps) Service {
	return &service{
		sessions:   deps.SessionRepo,
		profiles:   deps.ProfileRepo,
		signer:     deps.Signer,
		refreshDur: deps.RefreshDur,
	}
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	p, err := s.profiles.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = p
	return sess, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Update(ctx, sessionID, map[string]interface{}{"enable": false})
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sess, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid or expired refresh token: %w", domain.ErrUnauthorized)
	}
	if sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshDur).Unix()
	if err := s.sessions.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return "", "", err
	}
	p, err := s.profiles.Get(ctx, sess.UserID)
	if err != nil {
		return "", "", err
	}
	bearer, err := s.signer.Sign(p.UserID, p.Role, sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return bearer, newToken, nil
}
