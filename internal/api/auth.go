package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"itemvault/internal/auth"
	"itemvault/internal/config"
	"itemvault/internal/mail"
	"itemvault/internal/model"
	"itemvault/internal/store"
)

// AuthHandler handles login, password recovery, and password reset.
type AuthHandler struct {
	DB     *sql.DB
	Cfg    *config.Config
	Mailer *mail.Sender
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Login handles POST /api/login/access-token. The body may be JSON or an
// OAuth2-style form with username/password fields.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var email, password string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		email, password = req.Email, req.Password
	} else {
		if err := r.ParseForm(); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		email, password = r.PostFormValue("username"), r.PostFormValue("password")
	}

	if email == "" || password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	// Unknown email and wrong password produce the same response.
	user, err := store.Authenticate(r.Context(), h.DB, email, password)
	if err != nil {
		slog.Error("authenticating user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		slog.Warn("login failed", "email", email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "incorrect email or password")
		return
	}
	if !user.IsActive {
		jsonError(w, http.StatusBadRequest, "inactive user")
		return
	}

	token, err := auth.IssueAccessToken(h.Cfg.SecretKey, user.ID, h.Cfg.AccessTokenTTL)
	if err != nil {
		slog.Error("issuing access token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	slog.Info("user logged in", "email", user.Email)
	jsonResponse(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// TestToken handles POST /api/login/test-token: it echoes the user the
// presented token resolves to.
func (h *AuthHandler) TestToken(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, CurrentUser(r.Context()))
}

// RecoverPassword handles POST /api/password-recovery/{email}. The response
// is identical whether or not the email maps to an account.
func (h *AuthHandler) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if err := model.ValidateEmail(email); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, email)
	if err != nil {
		slog.Error("looking up user for recovery", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if user != nil && user.IsActive {
		token, err := auth.IssueResetToken(h.Cfg.SecretKey, user.Email, h.Cfg.ResetTokenTTL)
		if err != nil {
			slog.Error("issuing reset token", "error", err)
			jsonError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Email delivery is best-effort: a failure is logged, not surfaced.
		if msg, err := mail.BuildResetPasswordEmail(h.Cfg, user.Email, token); err != nil {
			slog.Error("building recovery email", "error", err)
		} else if err := h.Mailer.Send(r.Context(), user.Email, msg); err != nil {
			slog.Error("sending recovery email", "email", user.Email, "error", err)
		}
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "password recovery email sent"})
}

// ResetPassword handles POST /api/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	email, err := auth.VerifyResetToken(h.Cfg.SecretKey, req.Token)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid token")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, email)
	if err != nil {
		slog.Error("looking up user for reset", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}
	if !user.IsActive {
		jsonError(w, http.StatusBadRequest, "inactive user")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, user.ID, req.NewPassword); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("updating password", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("password reset", "email", user.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
