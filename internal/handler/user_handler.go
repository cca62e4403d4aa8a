package handlers

import (
	"net/http"

	"voxablog/internal/apperror"
	"voxablog/internal/session"
)

var errNoSession = apperror.New(apperror.KindUnauthorized, "Authentication required")

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, errNoSession)
		return
	}

	user, err := h.UserService.Profile(r.Context(), sess)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, user, http.StatusOK)
}
