package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-auth-gate/internal/application/gate"
	"github.com/go-auth-gate/internal/domain"
	"github.com/go-auth-gate/internal/pkg/validate"
	"github.com/go-auth-gate/internal/transport/http/middleware"
)

// AuthHandler handles the challenge-based login and signup flow.
type AuthHandler struct {
	svc gate.Service
}

func NewAuthHandler(svc gate.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req gate.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req.IP = middleware.RealIP(r)

	ch, err := h.svc.StartLogin(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req gate.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req.IP = middleware.RealIP(r)

	ch, err := h.svc.StartSignup(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req gate.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	req.IP = middleware.RealIP(r)

	result, err := h.svc.Verify(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrCodeInvalid) {
			writeJSON(w, http.StatusBadRequest, VerifyEnvelope{Valid: false, Error: "Invalid or expired verification code"})
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Bearer:          result.Bearer,
		RefreshToken:    result.RefreshToken,
		PromotedToAdmin: result.PromotedToAdmin,
		Session:         result.Session,
	})
}

func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	token, ok := decodeChallengeToken(w, r)
	if !ok {
		return
	}
	ch, err := h.svc.Resend(r.Context(), token)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (h *AuthHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	token, ok := decodeChallengeToken(w, r)
	if !ok {
		return
	}
	if err := h.svc.Abandon(r.Context(), token); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "flow abandoned"})
}

func decodeChallengeToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		ChallengeToken string `json:"challenge_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ChallengeToken == "" {
		writeError(w, http.StatusBadRequest, "challenge_token required")
		return "", false
	}
	return body.ChallengeToken, true
}
