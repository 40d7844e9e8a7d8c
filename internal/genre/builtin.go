// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package genre

import (
	"github.com/google/uuid"

	"appmarket/internal/store"
)

// Names of the built-in extra genres.
const (
	All              = "All"
	Popular          = "Popular"
	PopularThisWeek  = "Popular This Week"
	New              = "New"
	RecentlyUpdated  = "Recently Updated"
	Installed        = "Installed"
	UpdatesAvailable = "Updates Available"
	NoUpdates        = "No Updates"
	AppsByMe         = "Apps By Me"
	AppsByAuthor     = "Apps By Author"
)

// Builtins returns the extra-genre descriptors in their fixed declaration
// order. The computed selectors close over the catalog and user
// collaborators they query.
func Builtins(catalog Catalog, users Users) []Descriptor {
	return []Descriptor{
		{
			Name:     All,
			Selector: StaticSelector(store.Filter{}),
			Priority: 0,
		},
		{
			Name:     Popular,
			Selector: StaticSelector(store.Filter{}),
			Options: StaticOptions(store.FindOptions{
				Sort: []store.SortField{{Field: "install_count", Desc: true}},
			}),
			Priority:    1,
			ShowSummary: true,
		},
		{
			Name:     PopularThisWeek,
			Selector: StaticSelector(store.Filter{}),
			Options: StaticOptions(store.FindOptions{
				Sort: []store.SortField{{Field: "install_count_week", Desc: true}},
			}),
			Priority:    2,
			ShowSummary: true,
		},
		{
			Name:     New,
			Selector: StaticSelector(store.Filter{}),
			Options: StaticOptions(store.FindOptions{
				Sort: []store.SortField{{Field: "created_at", Desc: true}},
			}),
			Priority:    3,
			ShowSummary: true,
		},
		{
			Name:     RecentlyUpdated,
			Selector: StaticSelector(store.Filter{}),
			Options: StaticOptions(store.FindOptions{
				Sort: []store.SortField{{Field: "last_updated", Desc: true}},
			}),
			Priority: 4,
		},
		{
			Name:     Installed,
			Selector: ComputedSelector(installedSelector(users)),
			Priority: 5,
		},
		{
			Name:     UpdatesAvailable,
			Selector: ComputedSelector(updatesSelector(catalog, users, true)),
			Priority: 6,
		},
		{
			Name:     NoUpdates,
			Selector: ComputedSelector(updatesSelector(catalog, users, false)),
			Priority: 7,
		},
		{
			Name:     AppsByMe,
			Selector: ComputedSelector(appsByMeSelector()),
			Priority: 8,
		},
		{
			Name:     AppsByAuthor,
			Selector: ComputedSelector(appsByAuthorSelector()),
			Priority: 9,
		},
	}
}

// installedSelector matches the union of the client's locally reported
// installs and the viewer's account installs. With neither source the
// union is empty and matches nothing — this is an empty membership
// filter, not the no-viewer signal, so anonymous clients still see their
// local installs.
func installedSelector(users Users) SelectorFunc {
	return func(rc *Context) (store.Filter, bool, error) {
		seen := make(map[uuid.UUID]bool, len(rc.LocalInstalled))
		ids := make(store.In, 0, len(rc.LocalInstalled))
		for _, id := range rc.LocalInstalled {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}

		u, err := rc.User()
		if err != nil {
			return nil, false, err
		}
		if u != nil {
			installed, err := users.InstalledApps(u.ID)
			if err != nil {
				return nil, false, err
			}
			for _, ia := range installed {
				if !seen[ia.AppID] {
					seen[ia.AppID] = true
					ids = append(ids, ia.AppID)
				}
			}
		}

		return store.Filter{"id": ids}, true, nil
	}
}

// updatesSelector classifies each of the viewer's installed apps by
// comparing the installed version timestamp against the catalog's latest
// version timestamp. Strictly older means an update is available; equal
// or newer counts as up to date. Without a viewer it signals no results.
func updatesSelector(catalog Catalog, users Users, wantUpdates bool) SelectorFunc {
	return func(rc *Context) (store.Filter, bool, error) {
		u, err := rc.User()
		if err != nil {
			return nil, false, err
		}
		if u == nil {
			return nil, false, nil
		}

		installed, err := users.InstalledApps(u.ID)
		if err != nil {
			return nil, false, err
		}

		ids := make(store.In, 0, len(installed))
		for _, ia := range installed {
			app, err := catalog.FindByID(ia.AppID)
			if err != nil {
				return nil, false, err
			}
			if app == nil {
				// Installed app no longer in the catalog.
				continue
			}
			if ia.HasUpdate(app.VersionUpdatedAt) == wantUpdates {
				ids = append(ids, ia.AppID)
			}
		}

		return store.Filter{"id": ids}, true, nil
	}
}

// appsByMeSelector matches apps authored by the viewer. Without a viewer
// it signals no results.
func appsByMeSelector() SelectorFunc {
	return func(rc *Context) (store.Filter, bool, error) {
		u, err := rc.User()
		if err != nil {
			return nil, false, err
		}
		if u == nil {
			return nil, false, nil
		}
		return store.Filter{"author_id": u.ID}, true, nil
	}
}

// appsByAuthorSelector matches apps by an explicitly supplied author,
// falling back to the "authorId" route parameter. An absent or malformed
// author signals no results.
func appsByAuthorSelector() SelectorFunc {
	return func(rc *Context) (store.Filter, bool, error) {
		id := rc.AuthorID
		if id == nil {
			raw := rc.RouteParam("authorId")
			if raw == "" {
				return nil, false, nil
			}
			parsed, err := uuid.Parse(raw)
			if err != nil {
				return nil, false, nil
			}
			id = &parsed
		}
		return store.Filter{"author_id": *id}, true, nil
	}
}
