// Package router sets up all HTTP routes and middleware chains for the
// appmarket API. It organizes routes into public, authenticated and
// admin groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"appmarket/internal/handlers"
	"appmarket/internal/middleware"
	"appmarket/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, auth *handlers.Auth, public *handlers.Public, apps *handlers.Apps, uploads *handlers.Uploads, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check, no auth.
	r.Get("/health", healthHandler)

	// Credential endpoints get a tighter rate limit than the rest of
	// the API. Uploads share it: both are abuse magnets.
	authLimiter := middleware.NewRateLimiter(20, time.Minute)

	r.Route("/auth", func(r chi.Router) {
		r.With(authLimiter.Middleware).Post("/register", auth.Register)
		r.With(authLimiter.Middleware).Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)

		// 2FA enrollment requires a session but not a completed
		// verification, admins land here right after login.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/verify", auth.TwoFAVerify)
		})
	})

	// Catalog browsing, open to anonymous visitors. Genre resolution
	// picks up the viewer from the session when one exists.
	r.Get("/genres", public.GenresList)
	r.Get("/genres/populated", public.GenresPopulated)
	r.Get("/genres/{name}", public.GenreGet)
	r.Get("/genres/{name}/apps", public.GenreApps)
	r.Get("/authors/{authorId}/apps", public.AuthorApps)
	r.Get("/apps/{slug}", public.AppGet)

	// App lifecycle, requires a signed-in account.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/apps", apps.Submit)
		r.Put("/apps/{id}", apps.Update)
		r.Post("/apps/{id}/versions", apps.AddVersion)
		r.Post("/apps/{id}/install", apps.Install)
		r.Delete("/apps/{id}/install", apps.Uninstall)
	})

	// Image uploads. The handler performs its own auth check so the
	// request is rejected before any file bytes are read.
	r.With(authLimiter.Middleware).Post("/images", uploads.ImageUpload)

	// Admin area: category management and app approval.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireAdmin)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", admin.CategoriesList)
			r.Post("/", admin.CategoryCreate)
			r.Put("/{id}", admin.CategoryUpdate)
			r.Delete("/{id}", admin.CategoryDelete)
		})

		r.Get("/apps/pending", admin.PendingApps)
		r.Post("/apps/{id}/approve", admin.AppApprove)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
