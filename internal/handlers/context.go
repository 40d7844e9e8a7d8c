// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"appmarket/internal/genre"
	"appmarket/internal/middleware"
)

// installedHeader is the header browsers use to report locally installed
// app IDs (comma-separated), letting anonymous visitors see their own
// installs in the Installed genre.
const installedHeader = "X-Installed-Apps"

// genreContext assembles the per-request invocation context for the
// genre resolver: the session's user, any authorId (query parameter or
// route parameter), and the client-reported local installs. Everything
// is optional; an anonymous request yields a context with nothing set.
func genreContext(r *http.Request) *genre.Context {
	rc := &genre.Context{}

	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		uid := sess.UserID
		rc.UserID = &uid
	}

	if raw := r.URL.Query().Get("authorId"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			rc.AuthorID = &id
		}
	}
	if raw := chi.URLParam(r, "authorId"); raw != "" {
		rc.RouteParams = map[string]string{"authorId": raw}
	}

	if raw := r.Header.Get(installedHeader); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil {
				rc.LocalInstalled = append(rc.LocalInstalled, id)
			}
		}
	}

	return rc
}
