package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-auth-gate/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// VerifyEnvelope is the verification check result. The failure form is always
// the same generic message regardless of what mismatched.
type VerifyEnvelope struct {
	Valid           bool   `json:"valid"`
	PromotedToAdmin bool   `json:"promotedToAdmin"`
	Error           string `json:"error,omitempty"`
}

// AuthEnvelope wraps successful login/signup completion responses.
type AuthEnvelope struct {
	Bearer          string          `json:"Bearer,omitempty"`
	RefreshToken    string          `json:"refresh_token,omitempty"`
	PromotedToAdmin bool            `json:"promoted_to_admin"`
	Session         *domain.Session `json:"session,omitempty"`
	Message         string          `json:"message,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session *domain.Session `json:"session,omitempty"`
	User    *domain.Profile `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// PaginatedProfilesEnvelope wraps paginated account list responses.
type PaginatedProfilesEnvelope struct {
	Data       []domain.Profile `json:"data"`
	NextCursor string           `json:"next_cursor,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps service errors onto HTTP statuses. Verification
// failures are deliberately NOT mapped here: handlers that validate codes
// collapse them into the generic {valid:false} form themselves.
func writeDomainError(w http.ResponseWriter, err error) {
	var blocked *domain.BlockedError
	if errors.As(err, &blocked) {
		writeError(w, http.StatusForbidden, blocked.Reason.Message())
		return
	}
	switch {
	case errors.Is(err, domain.ErrCooldown):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
