// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// App represents one installable application in the catalog.
// Description is Markdown source; the handlers render it to HTML on read.
type App struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Description      string    `json:"description"`
	AuthorID         uuid.UUID `json:"author_id"`
	Categories       []string  `json:"categories"`
	InstallCount     int       `json:"install_count"`
	InstallCountWeek int       `json:"install_count_week"`
	Approved         bool      `json:"approved"`
	IconURL          *string   `json:"icon_url,omitempty"`

	// Denormalized latest-version columns, maintained by AddVersion.
	LatestVersion    string    `json:"latest_version"`
	VersionUpdatedAt time.Time `json:"version_updated_at"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// InCategory returns true if the app is tagged with the given category name.
func (a *App) InCategory(name string) bool {
	for _, c := range a.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// AppVersion is one entry in an app's version history. The newest entry's
// CreatedAt matches the app's denormalized VersionUpdatedAt.
type AppVersion struct {
	ID        uuid.UUID `json:"id"`
	AppID     uuid.UUID `json:"app_id"`
	Version   string    `json:"version"`
	Changelog string    `json:"changelog"`
	CreatedAt time.Time `json:"created_at"`
}
