package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-auth-gate/internal/application/gate"
	"github.com/go-auth-gate/internal/domain"
)

// VerificationHandler exposes the raw code lifecycle: issue a code by email
// address and validate it without a prior challenge.
type VerificationHandler struct {
	svc gate.Service
}

func NewVerificationHandler(svc gate.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

type sendCodeRequest struct {
	Email  string `json:"email"`
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

type verifyCodeRequest struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Type     string `json:"type"`
	Password string `json:"password"`
}

func (h *VerificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "email and type are required")
		return
	}
	if !domain.ValidFlow(req.Type) {
		writeError(w, http.StatusBadRequest, "unknown verification type")
		return
	}
	if err := h.svc.IssueCode(r.Context(), req.Email, domain.Flow(req.Type), req.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Code == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "email, code and type are required")
		return
	}
	if !domain.ValidFlow(req.Type) {
		writeError(w, http.StatusBadRequest, "unknown verification type")
		return
	}
	result, err := h.svc.VerifyCode(r.Context(), gate.VerifyCodeRequest{
		Email:    req.Email,
		Code:     req.Code,
		Flow:     domain.Flow(req.Type),
		Password: req.Password,
	})
	if err != nil {
		// A wrong, expired or consumed code always yields the same shape so a
		// caller cannot distinguish which check failed.
		if errors.Is(err, domain.ErrCodeInvalid) {
			writeJSON(w, http.StatusBadRequest, VerifyEnvelope{Valid: false, Error: "Invalid or expired verification code"})
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyEnvelope{Valid: result.Valid, PromotedToAdmin: result.PromotedToAdmin})
}
