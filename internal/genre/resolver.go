// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package genre

import (
	"sort"

	"github.com/google/uuid"

	"appmarket/internal/models"
	"appmarket/internal/store"
)

// Catalog is the slice of the app store the resolver queries.
type Catalog interface {
	Find(f store.Filter, opts store.FindOptions) ([]models.App, error)
	FindOne(f store.Filter, opts store.FindOptions) (*models.App, error)
	FindByID(id uuid.UUID) (*models.App, error)
}

// Categories is the category registry the resolver consults first for
// every genre name.
type Categories interface {
	List() ([]models.Category, error)
	FindByName(name string) (*models.Category, error)
}

// Users resolves viewers and their installed-apps state.
type Users interface {
	FindByID(id uuid.UUID) (*models.User, error)
	InstalledApps(id uuid.UUID) ([]models.InstalledApp, error)
}

// Resolver dispatches genre names to either a category filter or an
// extra-genre selector, merges the result with the caller's filter, and
// executes the query against the catalog.
type Resolver struct {
	catalog Catalog
	cats    Categories
	users   Users
	extras  []Descriptor
}

// NewResolver creates a Resolver over the given collaborators. The
// extras slice fixes the declaration order that All preserves; names must
// be unique among extras, and a category sharing an extra's name shadows
// it.
func NewResolver(catalog Catalog, categories Categories, users Users, extras []Descriptor) *Resolver {
	return &Resolver{
		catalog: catalog,
		cats:    categories,
		users:   users,
		extras:  extras,
	}
}

// extra returns the extra-genre descriptor with the given name.
func (r *Resolver) extra(name string) (Descriptor, bool) {
	for _, d := range r.extras {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// resolve turns a genre name plus the caller's filter and options into a
// final filter/options pair. The bool is false when a computed selector
// signaled "no viewer": the caller must produce an empty result, not an
// unrestricted one.
//
// Categories are checked before extra genres, so a category wins a name
// collision. The category's name overwrites any caller-supplied category
// field; for extra genres the genre's selector and options fields win
// over the caller's on key collisions (shallow merge).
func (r *Resolver) resolve(name string, f store.Filter, opts store.FindOptions, rc *Context) (store.Filter, store.FindOptions, bool, error) {
	if rc == nil {
		rc = &Context{}
	}
	rc.bind(r.users)

	cat, err := r.cats.FindByName(name)
	if err != nil {
		return nil, opts, false, err
	}
	if cat != nil {
		merged := f.Clone()
		merged["category"] = cat.Name
		return merged, opts, true, nil
	}

	if d, ok := r.extra(name); ok {
		gf, ok, err := d.Selector.Resolve(rc)
		if err != nil {
			return nil, opts, false, err
		}
		if !ok {
			return nil, opts, false, nil
		}
		gopts, err := d.Options.Resolve(rc)
		if err != nil {
			return nil, opts, false, err
		}
		return store.Merge(f, gf), store.MergeOptions(opts, gopts), true, nil
	}

	// Unknown name: a never-matching filter, not an unrestricted scan.
	return store.Never(), opts, true, nil
}

// FindIn resolves the genre name and returns all matching apps.
func (r *Resolver) FindIn(name string, f store.Filter, opts store.FindOptions, rc *Context) ([]models.App, error) {
	filter, merged, ok, err := r.resolve(name, f, opts, rc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return r.catalog.Find(filter, merged)
}

// FindOneIn resolves the genre name and returns the first matching app,
// or nil when nothing matches or no viewer could be resolved.
func (r *Resolver) FindOneIn(name string, f store.Filter, opts store.FindOptions, rc *Context) (*models.App, error) {
	filter, merged, ok, err := r.resolve(name, f, opts, rc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return r.catalog.FindOne(filter, merged)
}

// ListOptions narrows and orders the descriptor list returned by All.
type ListOptions struct {
	// Where keeps only descriptors whose named fields equal the given
	// values. Recognized fields: "name", "priority", "showSummary",
	// "isCategory".
	Where map[string]any

	// Match keeps only descriptors the predicate accepts.
	Match func(Descriptor) bool

	// SortBy orders descriptors by the returned key, ascending. Without
	// it the insertion order stands: extras first in declaration order,
	// then categories in catalog order.
	SortBy func(Descriptor) int
}

// fieldValue maps a Where field name to the descriptor's value for it.
func fieldValue(d Descriptor, field string) (any, bool) {
	switch field {
	case "name":
		return d.Name, true
	case "priority":
		return d.Priority, true
	case "showSummary":
		return d.ShowSummary, true
	case "isCategory":
		return d.IsCategory, true
	}
	return nil, false
}

// All returns every genre descriptor: extra genres in declaration order
// followed by categories in catalog order, optionally narrowed and
// sorted per opts.
func (r *Resolver) All(opts *ListOptions) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(r.extras))
	out = append(out, r.extras...)

	cats, err := r.cats.List()
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		out = append(out, CategoryDescriptor(c.Name))
	}

	if opts == nil {
		return out, nil
	}

	if len(opts.Where) > 0 || opts.Match != nil {
		kept := out[:0]
		for _, d := range out {
			if !matchWhere(d, opts.Where) {
				continue
			}
			if opts.Match != nil && !opts.Match(d) {
				continue
			}
			kept = append(kept, d)
		}
		out = kept
	}

	if opts.SortBy != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return opts.SortBy(out[i]) < opts.SortBy(out[j])
		})
	}

	return out, nil
}

// matchWhere checks a descriptor against an equality filter. Unrecognized
// fields never match.
func matchWhere(d Descriptor, where map[string]any) bool {
	for field, want := range where {
		got, ok := fieldValue(d, field)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// GetOne looks a genre up by name: category first, then extra genre.
// Returns nil when neither exists.
func (r *Resolver) GetOne(name string) (*Descriptor, error) {
	cat, err := r.cats.FindByName(name)
	if err != nil {
		return nil, err
	}
	if cat != nil {
		d := CategoryDescriptor(cat.Name)
		return &d, nil
	}
	if d, ok := r.extra(name); ok {
		return &d, nil
	}
	return nil, nil
}

// Populated filters All down to the genres that currently have at least
// one app matching the given filter/options/context. This costs one
// catalog query per genre; callers that can tolerate a periodically
// refreshed view should read the PopulatedCache instead.
func (r *Resolver) Populated(f store.Filter, opts store.FindOptions, rc *Context) ([]Descriptor, error) {
	all, err := r.All(nil)
	if err != nil {
		return nil, err
	}

	var out []Descriptor
	for _, d := range all {
		app, err := r.FindOneIn(d.Name, f, opts, rc)
		if err != nil {
			return nil, err
		}
		if app != nil {
			out = append(out, d)
		}
	}
	return out, nil
}
