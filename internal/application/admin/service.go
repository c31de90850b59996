package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-auth-gate/internal/domain"
)

// ProfileStore is the subset of the profile store the admin surface needs.
type ProfileStore interface {
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Profile, string, error)
}

type AuditStore interface {
	Scan(ctx context.Context, limit int32) ([]domain.AuditLog, error)
	ListByUser(ctx context.Context, userID string) ([]domain.AuditLog, error)
}

// ObjectStore receives audit-log export snapshots.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Service interface {
	ListUsers(ctx context.Context, limit int, cursor string) ([]domain.Profile, string, error)

	// UserAudit returns the audit trail for one account, newest first.
	UserAudit(ctx context.Context, userID string) ([]domain.AuditLog, error)

	// ExportAudit snapshots up to limit recent audit entries to object
	// storage and returns a time-limited download URL.
	ExportAudit(ctx context.Context, limit int) (string, error)
}

type Deps struct {
	ProfileRepo ProfileStore
	AuditRepo   AuditStore
	Store       ObjectStore
}

type service struct {
	profiles ProfileStore
	audit    AuditStore
	store    ObjectStore
}

func NewService(deps Deps) Service {
	return &service{profiles: deps.ProfileRepo, audit: deps.AuditRepo, store: deps.Store}
}

func (s *service) ListUsers(ctx context.Context, limit int, cursor string) ([]domain.Profile, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return s.profiles.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) UserAudit(ctx context.Context, userID string) ([]domain.AuditLog, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id required: %w", domain.ErrBadRequest)
	}
	return s.audit.ListByUser(ctx, userID)
}

func (s *service) ExportAudit(ctx context.Context, limit int) (string, error) {
	if limit <= 0 || limit > 10000 {
		limit = 1000
	}
	entries, err := s.audit.Scan(ctx, int32(limit))
	if err != nil {
		return "", fmt.Errorf("scan audit log: %w", err)
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshal audit export: %w", err)
	}

	key := fmt.Sprintf("audit/%s.json", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	if _, err := s.store.Upload(ctx, key, bytes.NewReader(payload), "application/json"); err != nil {
		return "", err
	}
	return s.store.PresignedURL(ctx, key, 1*time.Hour)
}
