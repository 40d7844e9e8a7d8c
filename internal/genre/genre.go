// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package genre unifies the two ways apps are grouped in the store:
// administrator-defined categories (persisted, matched by tag) and
// code-defined "extra genres" (computed views such as Popular, Installed,
// or Updates Available). Both are addressable by name through the
// Resolver, which turns a genre name plus a caller-supplied filter into a
// concrete catalog query.
package genre

import (
	"fmt"

	"github.com/google/uuid"

	"appmarket/internal/models"
	"appmarket/internal/store"
)

// SelectorFunc computes a filter from the invocation context. The second
// return value is false when no viewer can be resolved, which the
// resolver treats as "no results" — never as the absence of a filter.
type SelectorFunc func(rc *Context) (store.Filter, bool, error)

// Selector is either a static filter or a function of the invocation
// context. Exactly one of the two variants is set; Resolve evaluates
// them uniformly.
type Selector struct {
	static store.Filter
	fn     SelectorFunc
}

// StaticSelector wraps a fixed filter.
func StaticSelector(f store.Filter) Selector {
	return Selector{static: f}
}

// ComputedSelector wraps a context-dependent filter function.
func ComputedSelector(fn SelectorFunc) Selector {
	return Selector{fn: fn}
}

// Resolve evaluates the selector against the invocation context.
func (s Selector) Resolve(rc *Context) (store.Filter, bool, error) {
	if s.fn != nil {
		return s.fn(rc)
	}
	return s.static, true, nil
}

// OptionsFunc computes query options from the invocation context.
type OptionsFunc func(rc *Context) (store.FindOptions, error)

// Options is either static query options or a function of the invocation
// context, mirroring Selector.
type Options struct {
	static store.FindOptions
	fn     OptionsFunc
}

// StaticOptions wraps fixed query options.
func StaticOptions(o store.FindOptions) Options {
	return Options{static: o}
}

// ComputedOptions wraps a context-dependent options function.
func ComputedOptions(fn OptionsFunc) Options {
	return Options{fn: fn}
}

// Resolve evaluates the options against the invocation context.
func (o Options) Resolve(rc *Context) (store.FindOptions, error) {
	if o.fn != nil {
		return o.fn(rc)
	}
	return o.static, nil
}

// Descriptor describes one genre: its unique name, how it selects apps,
// and its display hints. Extra genres are defined once at process start
// and immutable thereafter; category descriptors are derived on the fly.
type Descriptor struct {
	Name        string
	Selector    Selector
	Options     Options
	Priority    int
	ShowSummary bool
	IsCategory  bool
}

// Info is the serializable summary of a Descriptor: everything except the
// selector machinery. It is what the populated-genres cache mirrors to
// Valkey and what the genre listing endpoints return.
type Info struct {
	Name        string `json:"name"`
	Priority    int    `json:"priority"`
	ShowSummary bool   `json:"show_summary"`
	IsCategory  bool   `json:"is_category"`
}

// Info returns the descriptor's serializable summary.
func (d Descriptor) Info() Info {
	return Info{
		Name:        d.Name,
		Priority:    d.Priority,
		ShowSummary: d.ShowSummary,
		IsCategory:  d.IsCategory,
	}
}

// CategoryDescriptor derives a genre descriptor from a category name:
// a static filter on the category tag.
func CategoryDescriptor(name string) Descriptor {
	return Descriptor{
		Name:       name,
		Selector:   StaticSelector(store.Filter{"category": name}),
		IsCategory: true,
	}
}

// Context carries the per-invocation state that computed genres may need:
// the viewer, an explicit author, route parameters, and the
// client-supplied list of locally installed app IDs. All of it is
// optional; the zero value is a fully anonymous invocation.
type Context struct {
	// UserID identifies the viewer, when a session resolved one.
	UserID *uuid.UUID

	// AuthorID is an explicitly supplied author for authorship genres.
	// When unset, the "authorId" route parameter is the fallback.
	AuthorID *uuid.UUID

	// RouteParams holds named parameters from the current route.
	RouteParams map[string]string

	// LocalInstalled lists app IDs the client reports as installed
	// locally (browser-side state), independent of any account.
	LocalInstalled []uuid.UUID

	users      Users
	user       *models.User
	userLoaded bool
}

// RouteParam returns the named route parameter, or "" if absent.
func (rc *Context) RouteParam(name string) string {
	return rc.RouteParams[name]
}

// bind attaches the user source the lazy User lookup goes through.
// Called by the resolver before any selector is evaluated.
func (rc *Context) bind(users Users) {
	if rc.users == nil {
		rc.users = users
	}
}

// User resolves the viewer's user record, loading it at most once per
// invocation. Returns nil when there is no user ID or no user source.
func (rc *Context) User() (*models.User, error) {
	if rc.userLoaded {
		return rc.user, nil
	}
	if rc.UserID == nil || rc.users == nil {
		rc.userLoaded = true
		return nil, nil
	}
	u, err := rc.users.FindByID(*rc.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve viewer: %w", err)
	}
	rc.user = u
	rc.userLoaded = true
	return u, nil
}
