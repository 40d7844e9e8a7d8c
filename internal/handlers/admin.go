// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"appmarket/internal/models"
	"appmarket/internal/slug"
	"appmarket/internal/store"
)

// Admin groups the administrator handlers: category management and app
// approval. The router guards every route here with RequireAdmin.
type Admin struct {
	apps     *store.AppStore
	catStore *store.CategoryStore
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(apps *store.AppStore, catStore *store.CategoryStore) *Admin {
	return &Admin{
		apps:     apps,
		catStore: catStore,
	}
}

// CategoriesList returns all categories in catalog order with app counts.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.catStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Category{}
	}
	writeJSON(w, http.StatusOK, items)
}

// CategoryCreate adds a new category. The name doubles as the tag stored
// on apps and the genre name, so it must be unique.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if msg := validateCategory(req.Name); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	existing, err := a.catStore.FindByName(req.Name)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeError(w, "A category with that name already exists.", http.StatusConflict)
		return
	}

	order, err := a.catStore.NextSortOrder()
	if err != nil {
		slog.Error("next sort order failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	created, err := a.catStore.Create(&models.Category{
		Name:        req.Name,
		Slug:        slug.Generate(req.Name),
		Description: req.Description,
		SortOrder:   order,
	})
	if err != nil {
		slog.Error("create category failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// CategoryUpdate modifies a category's description and sort order.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid category ID.", http.StatusBadRequest)
		return
	}

	cat, err := a.catStore.FindByID(id)
	if err != nil {
		slog.Error("category lookup failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if cat == nil {
		writeError(w, "Category not found.", http.StatusNotFound)
		return
	}

	var req struct {
		Description string `json:"description"`
		SortOrder   int    `json:"sort_order"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	cat.Description = req.Description
	cat.SortOrder = req.SortOrder
	if err := a.catStore.Update(cat); err != nil {
		slog.Error("update category failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, cat)
}

// CategoryDelete removes a category. Apps keep the orphaned tag but the
// name stops resolving as a genre.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid category ID.", http.StatusBadRequest)
		return
	}

	if err := a.catStore.Delete(id); err != nil {
		slog.Error("delete category failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AppApprove flips an app's approval state, which controls its
// visibility in public listings and in the populated-genres cache.
func (a *Admin) AppApprove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "Invalid app ID.", http.StatusBadRequest)
		return
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	if err := a.apps.SetApproved(id, req.Approved); err != nil {
		slog.Error("approve app failed", "app", id, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PendingApps lists the unapproved submissions awaiting review.
func (a *Admin) PendingApps(w http.ResponseWriter, r *http.Request) {
	apps, err := a.apps.Find(store.Filter{"approved": false}, store.FindOptions{
		Sort: []store.SortField{{Field: "created_at", Desc: true}},
	})
	if err != nil {
		slog.Error("list pending apps failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []models.App{}
	}
	writeJSON(w, http.StatusOK, apps)
}
