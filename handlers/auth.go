// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/liftlog/auth"
	"github.com/danielhkuo/liftlog/cliparse"
	"github.com/danielhkuo/liftlog/middleware"
	"github.com/danielhkuo/liftlog/models"
)

type AuthHandler struct {
	cfg cliparse.Config
}

func NewAuthHandler(cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := auth.CheckPassword(req.Password, h.cfg.AppPassword); err != nil {
		slog.Warn("login failed",
			"ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret),
			"user_agent", r.UserAgent(),
		)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, expiresAt, err := auth.IssueSession(h.cfg.SessionSecret, time.Now())
	if err != nil {
		slog.Error("failed to issue session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("login succeeded", "expires_at", expiresAt)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Session handles GET /api/auth/session
// Always 200; isAuthenticated tells the client whether to show the login page.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{})
		return
	}

	expiresAt, err := auth.ValidateSession(token, h.cfg.SessionSecret, time.Now())
	if err != nil {
		if !errors.Is(err, auth.ErrSessionExpired) {
			slog.Warn("invalid session token presented", "ip_hash", auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret))
		}
		middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		IsAuthenticated: true,
		ExpiresAt:       expiresAt,
	})
}
