// public_genre_test.go covers the genre browsing endpoints with
// in-memory resolver collaborators, no database required.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"appmarket/internal/genre"
	"appmarket/internal/models"
	"appmarket/internal/store"
)

// stubCatalog applies the equality, membership and category conditions
// of a Filter in memory.
type stubCatalog struct {
	apps []models.App
}

func (s *stubCatalog) matches(a *models.App, f store.Filter) bool {
	if f.IsNever() {
		return false
	}
	for key, value := range f {
		switch key {
		case "category":
			if !a.InCategory(value.(string)) {
				return false
			}
		case "approved":
			if a.Approved != value.(bool) {
				return false
			}
		case "author_id":
			if a.AuthorID != value.(uuid.UUID) {
				return false
			}
		case "id":
			ids, ok := value.(store.In)
			if !ok {
				return false
			}
			found := false
			for _, id := range ids {
				if a.ID == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (s *stubCatalog) Find(f store.Filter, opts store.FindOptions) ([]models.App, error) {
	var out []models.App
	for _, a := range s.apps {
		a := a
		if s.matches(&a, f) {
			out = append(out, a)
		}
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *stubCatalog) FindOne(f store.Filter, opts store.FindOptions) (*models.App, error) {
	apps, err := s.Find(f, opts)
	if err != nil || len(apps) == 0 {
		return nil, err
	}
	return &apps[0], nil
}

func (s *stubCatalog) FindByID(id uuid.UUID) (*models.App, error) {
	for _, a := range s.apps {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

type stubCategories struct {
	cats []models.Category
}

func (s *stubCategories) List() ([]models.Category, error) { return s.cats, nil }

func (s *stubCategories) FindByName(name string) (*models.Category, error) {
	for _, c := range s.cats {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

type stubUsers struct{}

func (stubUsers) FindByID(uuid.UUID) (*models.User, error)            { return nil, nil }
func (stubUsers) InstalledApps(uuid.UUID) ([]models.InstalledApp, error) { return nil, nil }

// newGenreTestServer wires the public genre endpoints over a fixed
// two-app, one-category catalog.
func newGenreTestServer(t *testing.T) (*chi.Mux, *stubCatalog) {
	t.Helper()

	author := uuid.New()
	catalog := &stubCatalog{apps: []models.App{
		{ID: uuid.New(), Name: "Approved Game", Slug: "approved-game", AuthorID: author, Categories: []string{"Games"}, Approved: true},
		{ID: uuid.New(), Name: "Pending Game", Slug: "pending-game", AuthorID: author, Categories: []string{"Games"}, Approved: false},
	}}
	cats := &stubCategories{cats: []models.Category{{ID: uuid.New(), Name: "Games"}}}
	resolver := genre.NewResolver(catalog, cats, stubUsers{}, genre.Builtins(catalog, stubUsers{}))
	public := NewPublic(resolver, nil, genre.NewPopulatedCache(resolver, nil), nil)

	r := chi.NewRouter()
	r.Get("/genres", public.GenresList)
	r.Get("/genres/populated", public.GenresPopulated)
	r.Get("/genres/{name}", public.GenreGet)
	r.Get("/genres/{name}/apps", public.GenreApps)
	r.Get("/authors/{authorId}/apps", public.AuthorApps)
	return r, catalog
}

func getJSON(t *testing.T, srv http.Handler, path string, dst any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec
}

func TestGenresList(t *testing.T) {
	srv, _ := newGenreTestServer(t)

	t.Run("all genres", func(t *testing.T) {
		var infos []genre.Info
		rec := getJSON(t, srv, "/genres", &infos)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		// Ten built-ins plus the Games category.
		if len(infos) != 11 {
			t.Fatalf("len = %d, want 11", len(infos))
		}
		if infos[0].Name != genre.All {
			t.Errorf("first = %q, want %q", infos[0].Name, genre.All)
		}
		last := infos[len(infos)-1]
		if last.Name != "Games" || !last.IsCategory {
			t.Errorf("last = %+v, want the Games category", last)
		}
	})

	t.Run("summary only", func(t *testing.T) {
		var infos []genre.Info
		rec := getJSON(t, srv, "/genres?summary=true", &infos)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(infos) != 3 {
			t.Fatalf("len = %d, want 3", len(infos))
		}
		for _, info := range infos {
			if !info.ShowSummary {
				t.Errorf("%q not flagged for summary", info.Name)
			}
		}
	})
}

func TestGenreGet(t *testing.T) {
	srv, _ := newGenreTestServer(t)

	t.Run("category", func(t *testing.T) {
		var info genre.Info
		rec := getJSON(t, srv, "/genres/Games", &info)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if info.Name != "Games" || !info.IsCategory {
			t.Errorf("info = %+v", info)
		}
	})

	t.Run("extra genre", func(t *testing.T) {
		var info genre.Info
		rec := getJSON(t, srv, "/genres/Popular", &info)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if info.Name != genre.Popular || info.IsCategory {
			t.Errorf("info = %+v", info)
		}
	})

	t.Run("unknown is 404", func(t *testing.T) {
		var ignore any
		rec := getJSON(t, srv, "/genres/Nope", &ignore)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestGenreApps(t *testing.T) {
	srv, _ := newGenreTestServer(t)

	t.Run("category restricted to approved", func(t *testing.T) {
		var apps []models.App
		rec := getJSON(t, srv, "/genres/Games/apps", &apps)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(apps) != 1 || apps[0].Name != "Approved Game" {
			t.Errorf("apps = %+v, want only the approved app", apps)
		}
	})

	t.Run("unknown genre is empty not everything", func(t *testing.T) {
		var apps []models.App
		rec := getJSON(t, srv, "/genres/Mystery/apps", &apps)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(apps) != 0 {
			t.Errorf("apps = %+v, want none", apps)
		}
	})

	t.Run("viewer genre without viewer is empty", func(t *testing.T) {
		var apps []models.App
		rec := getJSON(t, srv, "/genres/Apps%20By%20Me/apps", &apps)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(apps) != 0 {
			t.Errorf("apps = %+v, want none", apps)
		}
	})
}

func TestAuthorApps(t *testing.T) {
	srv, catalog := newGenreTestServer(t)
	author := catalog.apps[0].AuthorID

	t.Run("by route parameter", func(t *testing.T) {
		var apps []models.App
		rec := getJSON(t, srv, "/authors/"+author.String()+"/apps", &apps)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(apps) != 1 || apps[0].Name != "Approved Game" {
			t.Errorf("apps = %+v, want the author's approved app", apps)
		}
	})

	t.Run("malformed author id is empty", func(t *testing.T) {
		var apps []models.App
		rec := getJSON(t, srv, "/authors/not-a-uuid/apps", &apps)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(apps) != 0 {
			t.Errorf("apps = %+v, want none", apps)
		}
	})
}

// Before the owner's first refresh the snapshot is not ready, and the
// handler must fall through to a live computation instead of serving an
// empty list.
func TestGenresPopulated_FallbackBeforeRefresh(t *testing.T) {
	author := uuid.New()
	catalog := &stubCatalog{apps: []models.App{
		{ID: uuid.New(), Name: "Only App", Slug: "only-app", AuthorID: author, Categories: []string{"Games"}, Approved: true},
	}}
	cats := &stubCategories{cats: []models.Category{{Name: "Games"}}}
	resolver := genre.NewResolver(catalog, cats, stubUsers{}, genre.Builtins(catalog, stubUsers{}))
	public := NewPublic(resolver, nil, genre.NewPopulatedCache(resolver, nil), nil)

	req := httptest.NewRequest(http.MethodGet, "/genres/populated", nil)
	rec := httptest.NewRecorder()
	public.GenresPopulated(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var infos []genre.Info
	if err := json.NewDecoder(rec.Body).Decode(&infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) == 0 {
		t.Fatal("populated list is empty before the first refresh, fallback did not run")
	}
	byName := make(map[string]bool, len(infos))
	for _, info := range infos {
		byName[info.Name] = true
	}
	if !byName["Games"] || !byName[genre.All] {
		t.Errorf("populated = %v, missing expected genres", infos)
	}
}

func TestGenresPopulated_Snapshot(t *testing.T) {
	author := uuid.New()
	catalog := &stubCatalog{apps: []models.App{
		{ID: uuid.New(), Name: "Only App", Slug: "only-app", AuthorID: author, Categories: []string{"Games"}, Approved: true},
	}}
	cats := &stubCategories{cats: []models.Category{
		{Name: "Games"},
		{Name: "Vacant"},
	}}
	resolver := genre.NewResolver(catalog, cats, stubUsers{}, genre.Builtins(catalog, stubUsers{}))
	populated := genre.NewPopulatedCache(resolver, nil)
	if err := populated.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	public := NewPublic(resolver, nil, populated, nil)

	req := httptest.NewRequest(http.MethodGet, "/genres/populated", nil)
	rec := httptest.NewRecorder()
	public.GenresPopulated(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var infos []genre.Info
	if err := json.NewDecoder(rec.Body).Decode(&infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	byName := make(map[string]bool, len(infos))
	for _, info := range infos {
		byName[info.Name] = true
	}
	if !byName["Games"] || !byName[genre.All] {
		t.Errorf("populated = %v, missing expected genres", infos)
	}
	if byName["Vacant"] || byName[genre.Installed] {
		t.Errorf("populated = %v, includes empty or viewer genres", infos)
	}
}
