// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/liftlog/middleware"
	"github.com/danielhkuo/liftlog/models"
	"github.com/danielhkuo/liftlog/storage"
)

// UploadHandler serves the photo upload flow and the stored files
type UploadHandler struct {
	store *storage.Store
}

func NewUploadHandler(store *storage.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// SignUpload handles POST /api/uploads
func (h *UploadHandler) SignUpload(w http.ResponseWriter, r *http.Request) {
	var req models.SignUploadRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.FileName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "fileName is required")
		return
	}

	objectPath := storage.NewObjectPath(req.FileName)
	uploadURL, expiresAt, err := h.store.SignUpload(objectPath, time.Now())
	if err != nil {
		slog.Error("failed to sign upload", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create upload URL")
		return
	}

	slog.Info("upload URL issued", "object", objectPath, "content_type", req.ContentType)

	middleware.JSONResponse(w, http.StatusOK, models.SignUploadResponse{
		UploadURL:  uploadURL,
		ObjectPath: objectPath,
		ExpiresAt:  expiresAt,
		MaxSize:    h.store.MaxSize(),
	})
}

// Upload handles PUT /api/uploads/{object...}
// Authorized by the signature in the URL rather than a session.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	objectPath := r.PathValue("object")
	q := r.URL.Query()

	err := h.store.VerifyUpload(objectPath, q.Get("expires"), q.Get("signature"), time.Now())
	switch {
	case errors.Is(err, storage.ErrInvalidPath):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid object path")
		return
	case errors.Is(err, storage.ErrURLExpired):
		middleware.ErrorResponse(w, http.StatusForbidden, "Upload URL expired")
		return
	case err != nil:
		middleware.ErrorResponse(w, http.StatusForbidden, "Invalid upload signature")
		return
	}

	defer r.Body.Close()
	if _, err := h.store.Put(objectPath, r.Body); err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		slog.Error("failed to store upload", "object", objectPath, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// SetPermissions handles POST /api/uploads/permissions
// Returns the display path for an uploaded object.
func (h *UploadHandler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	var req models.SetPermissionsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	objectPath := storage.ObjectPathFromURL(req.ObjectPath)
	exists, err := h.store.Exists(objectPath)
	if errors.Is(err, storage.ErrInvalidPath) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid object path")
		return
	}
	if err != nil {
		slog.Error("failed to stat upload", "object", objectPath, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Object not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SetPermissionsResponse{
		DisplayPath: storage.DisplayPath(objectPath),
	})
}

// Serve handles GET /files/{object...}
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	objectPath := r.PathValue("object")

	f, info, err := h.store.Open(objectPath)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidPath) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to open object", "object", objectPath, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	defer f.Close()

	w.Header().Set("Cache-Control", "private, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
