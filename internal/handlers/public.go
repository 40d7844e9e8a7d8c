// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"appmarket/internal/cache"
	"appmarket/internal/genre"
	"appmarket/internal/markdown"
	"appmarket/internal/models"
	"appmarket/internal/store"
)

// Public groups the store-browsing handlers. Every endpoint here works
// without a session; a session just enriches the genre context so
// user-relative genres resolve.
type Public struct {
	resolver   *genre.Resolver
	apps       *store.AppStore
	populated  *genre.PopulatedCache // set on the catalog owner, nil on frontends
	genreCache *cache.GenreCache
}

// NewPublic creates a new Public handler group. populated may be nil on
// processes that do not own the catalog; they serve the Valkey mirror.
func NewPublic(resolver *genre.Resolver, apps *store.AppStore, populated *genre.PopulatedCache, genreCache *cache.GenreCache) *Public {
	return &Public{
		resolver:   resolver,
		apps:       apps,
		populated:  populated,
		genreCache: genreCache,
	}
}

// GenresList returns every genre: extra genres in declaration order, then
// categories in catalog order. ?summary=true narrows to genres flagged
// for summary display; ?sort=priority orders by priority.
func (p *Public) GenresList(w http.ResponseWriter, r *http.Request) {
	var opts *genre.ListOptions
	if r.URL.Query().Get("summary") == "true" {
		opts = &genre.ListOptions{Where: map[string]any{"showSummary": true}}
	}
	if r.URL.Query().Get("sort") == "priority" {
		if opts == nil {
			opts = &genre.ListOptions{}
		}
		opts.SortBy = func(d genre.Descriptor) int { return d.Priority }
	}

	all, err := p.resolver.All(opts)
	if err != nil {
		slog.Error("list genres failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	infos := make([]genre.Info, len(all))
	for i, d := range all {
		infos[i] = d.Info()
	}
	writeJSON(w, http.StatusOK, infos)
}

// GenresPopulated returns the genres that currently contain at least one
// approved app. The catalog owner serves its in-process snapshot; other
// processes serve the Valkey mirror. An empty mirror falls back to a
// live computation.
func (p *Public) GenresPopulated(w http.ResponseWriter, r *http.Request) {
	if p.populated != nil {
		if infos := p.populated.Infos(); infos != nil {
			writeJSON(w, http.StatusOK, infos)
			return
		}
	}

	if p.genreCache != nil {
		infos, err := p.genreCache.Populated(r.Context())
		if err != nil {
			slog.Warn("populated genres mirror unavailable", "error", err)
		} else if infos != nil {
			writeJSON(w, http.StatusOK, infos)
			return
		}
	}

	list, err := p.resolver.Populated(store.Filter{"approved": true}, store.FindOptions{}, genreContext(r))
	if err != nil {
		slog.Error("compute populated genres failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	infos := make([]genre.Info, len(list))
	for i, d := range list {
		infos[i] = d.Info()
	}
	writeJSON(w, http.StatusOK, infos)
}

// GenreGet returns one genre descriptor by name, category first.
func (p *Public) GenreGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	d, err := p.resolver.GetOne(name)
	if err != nil {
		slog.Error("get genre failed", "genre", name, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if d == nil {
		writeError(w, "Genre not found.", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d.Info())
}

// GenreApps lists the approved apps in a genre. The approval restriction
// is the caller filter handed to the resolver; the genre's own selector
// and options are merged on top and win on conflicts. Unknown genre
// names return an empty list, never the whole catalog.
func (p *Public) GenreApps(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	opts := store.FindOptions{Limit: queryInt(r, "limit", 50), Offset: queryInt(r, "offset", 0)}
	apps, err := p.resolver.FindIn(name, store.Filter{"approved": true}, opts, genreContext(r))
	if err != nil {
		slog.Error("genre apps failed", "genre", name, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []models.App{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// AuthorApps lists an author's approved apps; the author comes from the
// route parameter, which the Apps By Author genre falls back to.
func (p *Public) AuthorApps(w http.ResponseWriter, r *http.Request) {
	apps, err := p.resolver.FindIn(genre.AppsByAuthor, store.Filter{"approved": true}, store.FindOptions{}, genreContext(r))
	if err != nil {
		slog.Error("author apps failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if apps == nil {
		apps = []models.App{}
	}
	writeJSON(w, http.StatusOK, apps)
}

// AppGet returns one app by slug, with its Markdown description rendered
// to HTML and its version history.
func (p *Public) AppGet(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	app, err := p.apps.FindBySlug(slug)
	if err != nil {
		slog.Error("get app failed", "slug", slug, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if app == nil {
		writeError(w, "App not found.", http.StatusNotFound)
		return
	}

	html, err := markdown.ToHTML(app.Description)
	if err != nil {
		slog.Warn("render app description failed", "slug", slug, "error", err)
		html = ""
	}

	versions, err := p.apps.Versions(app.ID)
	if err != nil {
		slog.Error("list app versions failed", "slug", slug, "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"app":              app,
		"description_html": html,
		"versions":         versions,
	})
}

// queryInt reads an integer query parameter with a fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
