package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-auth-gate/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAdminSvc struct{ mock.Mock }

func (m *mockAdminSvc) ListUsers(ctx context.Context, limit int, cursor string) ([]domain.Profile, string, error) {
	args := m.Called(ctx, limit, cursor)
	profiles, _ := args.Get(0).([]domain.Profile)
	return profiles, args.String(1), args.Error(2)
}
func (m *mockAdminSvc) UserAudit(ctx context.Context, userID string) ([]domain.AuditLog, error) {
	args := m.Called(ctx, userID)
	entries, _ := args.Get(0).([]domain.AuditLog)
	return entries, args.Error(1)
}
func (m *mockAdminSvc) ExportAudit(ctx context.Context, limit int) (string, error) {
	args := m.Called(ctx, limit)
	return args.String(0), args.Error(1)
}

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// --- ListUsers ---

func TestAdminListUsers_HappyPath(t *testing.T) {
	svc := &mockAdminSvc{}
	svc.On("ListUsers", mock.Anything, 10, "cur1").
		Return([]domain.Profile{{UserID: "u1", Username: "alice"}}, "cur2", nil)
	h := NewAdminHandler(&mockBanlistSvc{}, svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/admin/users?limit=10&cursor=cur1", nil)
	rr := httptest.NewRecorder()
	h.ListUsers(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp PaginatedProfilesEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "alice", resp.Data[0].Username)
	assert.Equal(t, "cur2", resp.NextCursor)
}

// --- bans ---

func TestAdminBanIP_MissingIP(t *testing.T) {
	h := NewAdminHandler(&mockBanlistSvc{}, &mockAdminSvc{})
	rr := httptest.NewRecorder()
	h.BanIP(rr, postJSON("/v1/admin/bans/ips", map[string]string{"note": "spam"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminBanIP_HappyPath_RecordsActor(t *testing.T) {
	p := newTestJWTProvider(t)
	bans := &mockBanlistSvc{}
	bans.On("BanIP", mock.Anything, "1.2.3.4", "spam", "admin1").Return(nil)
	h := NewAdminHandler(bans, &mockAdminSvc{})

	body, _ := json.Marshal(map[string]string{"ip": "1.2.3.4", "note": "spam"})
	r := bearerReq(t, p, http.MethodPost, "/v1/admin/bans/ips", "admin1", domain.RoleAdmin, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.BanIP), rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	bans.AssertExpectations(t)
}

func TestAdminUnbanIP(t *testing.T) {
	bans := &mockBanlistSvc{}
	bans.On("UnbanIP", mock.Anything, "1.2.3.4", "").Return(nil)
	h := NewAdminHandler(bans, &mockAdminSvc{})

	r := withChiParam(httptest.NewRequest(http.MethodDelete, "/v1/admin/bans/ips/1.2.3.4", nil), "ip", "1.2.3.4")
	rr := httptest.NewRecorder()
	h.UnbanIP(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	bans.AssertExpectations(t)
}

func TestAdminBanEmail_HappyPath(t *testing.T) {
	bans := &mockBanlistSvc{}
	bans.On("BanEmail", mock.Anything, "a@b.com", "fraud", "").Return(nil)
	h := NewAdminHandler(bans, &mockAdminSvc{})

	rr := httptest.NewRecorder()
	h.BanEmail(rr, postJSON("/v1/admin/bans/emails", map[string]string{"email": "a@b.com", "note": "fraud"}))

	assert.Equal(t, http.StatusCreated, rr.Code)
	bans.AssertExpectations(t)
}

func TestAdminUnbanEmail(t *testing.T) {
	bans := &mockBanlistSvc{}
	bans.On("UnbanEmail", mock.Anything, "a@b.com", "").Return(nil)
	h := NewAdminHandler(bans, &mockAdminSvc{})

	r := withChiParam(httptest.NewRequest(http.MethodDelete, "/v1/admin/bans/emails/a@b.com", nil), "email", "a@b.com")
	rr := httptest.NewRecorder()
	h.UnbanEmail(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// --- deactivate / reactivate ---

func TestAdminDeactivate(t *testing.T) {
	bans := &mockBanlistSvc{}
	bans.On("Deactivate", mock.Anything, "u1", "").Return(nil)
	h := NewAdminHandler(bans, &mockAdminSvc{})

	r := withChiParam(httptest.NewRequest(http.MethodPost, "/v1/admin/users/u1/deactivate", nil), "id", "u1")
	rr := httptest.NewRecorder()
	h.Deactivate(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	bans.AssertExpectations(t)
}

func TestAdminReactivate(t *testing.T) {
	bans := &mockBanlistSvc{}
	bans.On("Reactivate", mock.Anything, "u1", "").Return(nil)
	h := NewAdminHandler(bans, &mockAdminSvc{})

	r := withChiParam(httptest.NewRequest(http.MethodPost, "/v1/admin/users/u1/reactivate", nil), "id", "u1")
	rr := httptest.NewRecorder()
	h.Reactivate(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAdminDeactivate_NotFound(t *testing.T) {
	bans := &mockBanlistSvc{}
	bans.On("Deactivate", mock.Anything, "nope", "").Return(domain.ErrNotFound)
	h := NewAdminHandler(bans, &mockAdminSvc{})

	r := withChiParam(httptest.NewRequest(http.MethodPost, "/v1/admin/users/nope/deactivate", nil), "id", "nope")
	rr := httptest.NewRecorder()
	h.Deactivate(rr, r)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminUserAudit(t *testing.T) {
	svc := &mockAdminSvc{}
	svc.On("UserAudit", mock.Anything, "u1").
		Return([]domain.AuditLog{{LogID: "l1", UserID: "u1", ActionType: domain.ActionLogin}}, nil)
	h := NewAdminHandler(&mockBanlistSvc{}, svc)

	r := withChiParam(httptest.NewRequest(http.MethodGet, "/v1/admin/users/u1/audit", nil), "id", "u1")
	rr := httptest.NewRecorder()
	h.UserAudit(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var entries []domain.AuditLog
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionLogin, entries[0].ActionType)
}

// --- audit export ---

func TestAdminExportAudit(t *testing.T) {
	svc := &mockAdminSvc{}
	svc.On("ExportAudit", mock.Anything, 500).Return("https://bucket/audit.json?sig=x", nil)
	h := NewAdminHandler(&mockBanlistSvc{}, svc)

	r := httptest.NewRequest(http.MethodPost, "/v1/admin/audit/export?limit=500", nil)
	rr := httptest.NewRecorder()
	h.ExportAudit(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "https://bucket/audit.json?sig=x", resp["url"])
}
