package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/skinledger/internal/service"
)

// UsersHandler handles account endpoints.
type UsersHandler struct {
	Users *service.UserService
}

// ChangePassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req service.PasswordChange
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Users.ChangePassword(r.Context(), claims.UserID, chi.URLParam(r, "id"), req); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user changed own password", "user", claims.Username)
	jsonResponse(w, http.StatusOK, messageResponse{Success: true, Message: "Password updated successfully."})
}
