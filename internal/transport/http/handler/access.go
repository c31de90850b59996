package handler

import (
	"net/http"

	"github.com/go-auth-gate/internal/application/banlist"
	"github.com/go-auth-gate/internal/transport/http/middleware"
)

// AccessHandler exposes the ban-registry gate that pages poll before
// rendering. Works with or without credentials: an authenticated caller also
// gets the account-level check, which force-terminates sessions on a hit.
type AccessHandler struct {
	svc banlist.Service
}

func NewAccessHandler(svc banlist.Service) *AccessHandler {
	return &AccessHandler{svc: svc}
}

func (h *AccessHandler) Check(w http.ResponseWriter, r *http.Request) {
	ip := middleware.RealIP(r)
	email := r.URL.Query().Get("email")

	accountID := ""
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		accountID = claims.UserID
	}

	result, err := h.svc.CheckBlocked(r.Context(), ip, email, accountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
