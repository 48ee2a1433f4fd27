package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"itemvault/internal/config"
	"itemvault/internal/mail"
	"itemvault/internal/model"
)

// UtilsHandler handles service endpoints outside the main resource routes.
type UtilsHandler struct {
	DB     *sql.DB
	Cfg    *config.Config
	Mailer *mail.Sender
}

type testEmailRequest struct {
	EmailTo string `json:"email_to"`
}

// TestEmail handles POST /api/utils/test-email (superuser): sends a test
// message to verify SMTP configuration.
func (h *UtilsHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := model.ValidateEmail(req.EmailTo); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := mail.BuildTestEmail(h.Cfg, req.EmailTo)
	if err != nil {
		slog.Error("building test email", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to build email")
		return
	}
	if err := h.Mailer.Send(r.Context(), req.EmailTo, msg); err != nil {
		slog.Error("sending test email", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to send email")
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"message": "test email sent"})
}

// HealthCheck handles GET /api/utils/health-check.
func (h *UtilsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		jsonError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
