package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-auth-gate/internal/domain"
	"github.com/go-auth-gate/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockBanlistSvc struct{ mock.Mock }

func (m *mockBanlistSvc) CheckBlocked(ctx context.Context, ip, email, accountID string) (*domain.BlockResult, error) {
	args := m.Called(ctx, ip, email, accountID)
	if r, _ := args.Get(0).(*domain.BlockResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockBanlistSvc) BanIP(ctx context.Context, ip, note, actorID string) error {
	return m.Called(ctx, ip, note, actorID).Error(0)
}
func (m *mockBanlistSvc) UnbanIP(ctx context.Context, ip, actorID string) error {
	return m.Called(ctx, ip, actorID).Error(0)
}
func (m *mockBanlistSvc) BanEmail(ctx context.Context, email, note, actorID string) error {
	return m.Called(ctx, email, note, actorID).Error(0)
}
func (m *mockBanlistSvc) UnbanEmail(ctx context.Context, email, actorID string) error {
	return m.Called(ctx, email, actorID).Error(0)
}
func (m *mockBanlistSvc) Deactivate(ctx context.Context, userID, actorID string) error {
	return m.Called(ctx, userID, actorID).Error(0)
}
func (m *mockBanlistSvc) Reactivate(ctx context.Context, userID, actorID string) error {
	return m.Called(ctx, userID, actorID).Error(0)
}

// --- Check ---

func TestAccessCheck_Anonymous_Clean(t *testing.T) {
	svc := &mockBanlistSvc{}
	svc.On("CheckBlocked", mock.Anything, "1.2.3.4", "", "").
		Return(&domain.BlockResult{Blocked: false}, nil)
	h := NewAccessHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/access/check", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	rr := httptest.NewRecorder()
	h.Check(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp domain.BlockResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.False(t, resp.Blocked)
	svc.AssertExpectations(t)
}

func TestAccessCheck_Anonymous_IPBanned(t *testing.T) {
	svc := &mockBanlistSvc{}
	svc.On("CheckBlocked", mock.Anything, "1.2.3.4", "", "").
		Return(&domain.BlockResult{Blocked: true, Reason: domain.ReasonIPBanned}, nil)
	h := NewAccessHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/access/check", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	rr := httptest.NewRecorder()
	h.Check(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp domain.BlockResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Blocked)
	assert.Equal(t, domain.ReasonIPBanned, resp.Reason)
}

func TestAccessCheck_Authenticated_IncludesAccount(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockBanlistSvc{}
	svc.On("CheckBlocked", mock.Anything, mock.Anything, "", "u1").
		Return(&domain.BlockResult{Blocked: true, Reason: domain.ReasonAccountDeactivated}, nil)
	h := NewAccessHandler(svc)

	r := bearerReq(t, p, http.MethodGet, "/v1/access/check", "u1", domain.RoleUser, nil)
	rr := httptest.NewRecorder()
	middleware.OptionalAuth(p)(http.HandlerFunc(h.Check)).ServeHTTP(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp domain.BlockResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, domain.ReasonAccountDeactivated, resp.Reason)
	svc.AssertExpectations(t)
}

func TestAccessCheck_EmailQueryParam(t *testing.T) {
	svc := &mockBanlistSvc{}
	svc.On("CheckBlocked", mock.Anything, mock.Anything, "a@b.com", "").
		Return(&domain.BlockResult{Blocked: true, Reason: domain.ReasonEmailBanned}, nil)
	h := NewAccessHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/access/check?email=a%40b.com", nil)
	rr := httptest.NewRecorder()
	h.Check(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestAccessCheck_StoreError(t *testing.T) {
	svc := &mockBanlistSvc{}
	svc.On("CheckBlocked", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("dynamo down"))
	h := NewAccessHandler(svc)

	rr := httptest.NewRecorder()
	h.Check(rr, httptest.NewRequest(http.MethodGet, "/v1/access/check", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
