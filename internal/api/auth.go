package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/skinledger/internal/auth"
	"github.com/erazemk/skinledger/internal/model"
	"github.com/erazemk/skinledger/internal/service"
	"github.com/erazemk/skinledger/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB            *sql.DB
	Users         *service.UserService
	JWTSecret     string
	TokenTTL      time.Duration
	SecureCookies bool
}

type signinRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type userResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
	Token   string      `json:"token,omitempty"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Users.Signup(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user signed up", "user", user.Username)
	jsonResponse(w, http.StatusCreated, messageResponse{Success: true, Message: "User created successfully!"})
}

// Signin handles POST /api/auth/signin.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Users.Signin(r.Context(), req.Login, req.Password)
	if err != nil {
		if statusOf(err) == http.StatusUnauthorized {
			slog.Warn("signin failed", "login", req.Login, "remote", r.RemoteAddr)
		}
		writeError(w, r, err)
		return
	}

	token, claims, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, h.TokenTTL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt.Time,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("user signed in", "user", user.Username)
	jsonResponse(w, http.StatusOK, userResponse{Success: true, User: user, Token: token})
}

// Logout handles POST /api/auth/logout. The token stays revoked until it
// would have expired.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("user logged out", "user", claims.Username)
	jsonResponse(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out"})
}

// Verify handles GET /api/auth/verify.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Users.Get(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, userResponse{Success: true, User: user})
}
