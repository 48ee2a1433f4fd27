package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"itemvault/internal/config"
	"itemvault/internal/mail"
	"itemvault/internal/model"
	"itemvault/internal/store"
)

// UsersHandler handles registration, profile, and user administration.
type UsersHandler struct {
	DB     *sql.DB
	Cfg    *config.Config
	Mailer *mail.Sender
}

type createUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	IsActive    *bool  `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type updateUserRequest struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	FullName    *string `json:"full_name"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type updateMeRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
}

// List handles GET /api/users (superuser).
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		slog.Error("listing users", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users (superuser). A welcome email with the
// initial credentials is sent when email is configured.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateNewUser(req.Email, req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user, err := store.CreateUser(r.Context(), h.DB, store.UserInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		IsActive:    active,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			jsonError(w, http.StatusConflict, "a user with this email already exists")
			return
		}
		slog.Error("creating user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	if h.Cfg.EmailsEnabled() {
		if msg, err := mail.BuildNewAccountEmail(h.Cfg, user.Email, req.Password); err != nil {
			slog.Error("building new-account email", "error", err)
		} else if err := h.Mailer.Send(r.Context(), user.Email, msg); err != nil {
			slog.Error("sending new-account email", "email", user.Email, "error", err)
		}
	}

	slog.Info("user created", "by", CurrentUser(r.Context()).Email, "email", user.Email)
	jsonResponse(w, http.StatusCreated, user)
}

// Signup handles POST /api/users/signup (public, config-gated).
func (h *UsersHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if !h.Cfg.OpenRegistration {
		jsonError(w, http.StatusForbidden, "open registration is disabled")
		return
	}

	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateNewUser(req.Email, req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, store.UserInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		IsActive: true,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			jsonError(w, http.StatusConflict, "a user with this email already exists")
			return
		}
		slog.Error("signing up user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	slog.Info("user signed up", "email", user.Email)
	jsonResponse(w, http.StatusCreated, user)
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, CurrentUser(r.Context()))
}

// UpdateMe handles PATCH /api/users/me. Absent fields are left untouched.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateMeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validatePatch(req.Email, req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := CurrentUser(r.Context())
	updated, err := store.UpdateUser(r.Context(), h.DB, user.ID, store.UserPatch{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			jsonError(w, http.StatusConflict, "a user with this email already exists")
			return
		}
		slog.Error("updating own profile", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	jsonResponse(w, http.StatusOK, updated)
}

// Get handles GET /api/users/{id}. Regular users may only fetch themselves.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	caller := CurrentUser(r.Context())
	if caller.ID != id && !caller.IsSuperuser {
		jsonError(w, http.StatusForbidden, "insufficient privileges")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	jsonResponse(w, http.StatusOK, user)
}

// Update handles PATCH /api/users/{id} (superuser).
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validatePatch(req.Email, req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := store.UpdateUser(r.Context(), h.DB, id, store.UserPatch{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			jsonError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, store.ErrConflict):
			jsonError(w, http.StatusConflict, "a user with this email already exists")
		default:
			slog.Error("updating user", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	slog.Info("user updated", "by", CurrentUser(r.Context()).Email, "email", updated.Email)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/users/{id} (superuser). The user's items are
// removed with the account.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	caller := CurrentUser(r.Context())
	if caller.ID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.Error("deleting user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	slog.Info("user deleted", "by", caller.Email, "user_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func validateNewUser(email, password string) error {
	if err := model.ValidateEmail(email); err != nil {
		return err
	}
	return model.ValidatePassword(password)
}

func validatePatch(email, password *string) error {
	if email != nil {
		if err := model.ValidateEmail(*email); err != nil {
			return err
		}
	}
	if password != nil {
		if err := model.ValidatePassword(*password); err != nil {
			return err
		}
	}
	return nil
}
