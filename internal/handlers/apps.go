// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"appmarket/internal/middleware"
	"appmarket/internal/models"
	"appmarket/internal/slug"
	"appmarket/internal/store"
)

// Apps groups the authenticated app-lifecycle handlers: submission,
// versioning, and the install/uninstall flow.
type Apps struct {
	apps      *store.AppStore
	userStore *store.UserStore
}

// NewApps creates a new Apps handler group.
func NewApps(apps *store.AppStore, userStore *store.UserStore) *Apps {
	return &Apps{
		apps:      apps,
		userStore: userStore,
	}
}

// Submit creates a new app owned by the logged-in user, together with
// its first version. New apps start unapproved and stay invisible to the
// public listings until an admin approves them.
func (h *Apps) Submit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Categories  []string `json:"categories"`
		Version     string   `json:"version"`
		Changelog   string   `json:"changelog"`
		IconURL     *string  `json:"icon_url"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	if msg := validateApp(req.Name, req.Description, req.Version, req.Categories); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	s := slug.Generate(req.Name)
	if existing, err := h.apps.FindBySlug(s); err != nil {
		slog.Error("submit slug lookup failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	} else if existing != nil {
		writeError(w, "An app with that name already exists.", http.StatusConflict)
		return
	}

	app := &models.App{
		Name:        req.Name,
		Slug:        s,
		Description: req.Description,
		AuthorID:    sess.UserID,
		Categories:  req.Categories,
		IconURL:     req.IconURL,
	}
	created, err := h.apps.Create(app, req.Version, req.Changelog)
	if err != nil {
		slog.Error("submit app failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// Update edits an app's metadata (name stays, the slug is derived from
// it). Only the app's author or an admin may do this.
func (h *Apps) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	app, ok := h.appFromRoute(w, r)
	if !ok {
		return
	}
	if app.AuthorID != sess.UserID && sess.Role != string(models.RoleAdmin) {
		writeError(w, "Only the app's author can edit it.", http.StatusForbidden)
		return
	}

	var req struct {
		Description string   `json:"description"`
		Categories  []string `json:"categories"`
		IconURL     *string  `json:"icon_url"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateApp(app.Name, req.Description, app.LatestVersion, req.Categories); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	app.Description = req.Description
	app.Categories = req.Categories
	app.IconURL = req.IconURL
	if err := h.apps.Update(app); err != nil {
		slog.Error("update app failed", "app", app.ID, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

// AddVersion appends a new version to an app. Only the app's author or
// an admin may do this.
func (h *Apps) AddVersion(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	app, ok := h.appFromRoute(w, r)
	if !ok {
		return
	}
	if app.AuthorID != sess.UserID && sess.Role != string(models.RoleAdmin) {
		writeError(w, "Only the app's author can publish versions.", http.StatusForbidden)
		return
	}

	var req struct {
		Version   string `json:"version"`
		Changelog string `json:"changelog"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateVersion(req.Version, req.Changelog); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	v, err := h.apps.AddVersion(app.ID, req.Version, req.Changelog)
	if err != nil {
		slog.Error("add version failed", "app", app.ID, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, v)
}

// Install records the app in the user's installed set at the current
// latest version and bumps the install counters. Reinstalling after an
// update refreshes the recorded version, which moves the app from
// Updates Available back to No Updates.
func (h *Apps) Install(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	app, ok := h.appFromRoute(w, r)
	if !ok {
		return
	}

	if err := h.userStore.Install(sess.UserID, app); err != nil {
		slog.Error("install failed", "app", app.ID, "user", sess.UserID, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if err := h.apps.RecordInstall(app.ID); err != nil {
		slog.Error("record install failed", "app", app.ID, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Uninstall removes the app from the user's installed set.
func (h *Apps) Uninstall(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	app, ok := h.appFromRoute(w, r)
	if !ok {
		return
	}

	if err := h.userStore.Uninstall(sess.UserID, app.ID); err != nil {
		slog.Error("uninstall failed", "app", app.ID, "user", sess.UserID, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// appFromRoute resolves the {id} route parameter to an app, writing the
// error response when it cannot.
func (h *Apps) appFromRoute(w http.ResponseWriter, r *http.Request) (*models.App, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid app ID.", http.StatusBadRequest)
		return nil, false
	}

	app, err := h.apps.FindByID(id)
	if err != nil {
		slog.Error("app lookup failed", "app", id, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return nil, false
	}
	if app == nil {
		writeError(w, "App not found.", http.StatusNotFound)
		return nil, false
	}
	return app, true
}
