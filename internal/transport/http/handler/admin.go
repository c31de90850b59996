package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-auth-gate/internal/application/admin"
	"github.com/go-auth-gate/internal/application/banlist"
	"github.com/go-auth-gate/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// AdminHandler handles moderation endpoints: ban list management, account
// deactivation and audit export. All routes sit behind RequireRole(admin).
type AdminHandler struct {
	bans  banlist.Service
	admin admin.Service
}

func NewAdminHandler(bans banlist.Service, adminSvc admin.Service) *AdminHandler {
	return &AdminHandler{bans: bans, admin: adminSvc}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	profiles, next, err := h.admin.ListUsers(r.Context(), limit, cursor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaginatedProfilesEnvelope{Data: profiles, NextCursor: next})
}

type banIPRequest struct {
	IP   string `json:"ip"`
	Note string `json:"note"`
}

func (h *AdminHandler) BanIP(w http.ResponseWriter, r *http.Request) {
	var req banIPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IP == "" {
		writeError(w, http.StatusBadRequest, "ip required")
		return
	}
	if err := h.bans.BanIP(r.Context(), req.IP, req.Note, actorID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "ip banned"})
}

func (h *AdminHandler) UnbanIP(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	if err := h.bans.UnbanIP(r.Context(), ip, actorID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ip unbanned"})
}

type banEmailRequest struct {
	Email string `json:"email"`
	Note  string `json:"note"`
}

func (h *AdminHandler) BanEmail(w http.ResponseWriter, r *http.Request) {
	var req banEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email required")
		return
	}
	if err := h.bans.BanEmail(r.Context(), req.Email, req.Note, actorID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{Message: "email banned"})
}

func (h *AdminHandler) UnbanEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := h.bans.UnbanEmail(r.Context(), email, actorID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email unbanned"})
}

func (h *AdminHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := h.bans.Deactivate(r.Context(), userID, actorID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "account deactivated"})
}

func (h *AdminHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := h.bans.Reactivate(r.Context(), userID, actorID(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "account reactivated"})
}

func (h *AdminHandler) UserAudit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.admin.UserAudit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AdminHandler) ExportAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	url, err := h.admin.ExportAudit(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func actorID(r *http.Request) string {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return claims.UserID
	}
	return ""
}
