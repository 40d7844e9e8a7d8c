// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"appmarket/internal/models"
)

// AppStore handles all catalog database operations. Find and FindOne are
// the generic entry points used by the genre resolver; the remaining
// methods serve the submission, versioning, and install flows.
type AppStore struct {
	db *sql.DB
}

// NewAppStore creates a new AppStore with the given database connection.
func NewAppStore(db *sql.DB) *AppStore {
	return &AppStore{db: db}
}

// appColumns lists the selected columns for every app query. The
// categories array travels as a comma-joined string because database/sql
// has no portable array scan.
const appColumns = `id, name, slug, description, author_id,
	array_to_string(categories, ','), install_count, install_count_week,
	approved, icon_url, latest_version, version_updated_at,
	created_at, last_updated`

// filterColumns whitelists the fields a Filter may reference, mapped to
// their SQL columns. "category" is handled separately (array membership).
var filterColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"slug":      "slug",
	"author_id": "author_id",
	"approved":  "approved",
}

// sortColumns whitelists the fields FindOptions.Sort may reference.
var sortColumns = map[string]string{
	"name":               "name",
	"install_count":      "install_count",
	"install_count_week": "install_count_week",
	"created_at":         "created_at",
	"last_updated":       "last_updated",
	"version_updated_at": "version_updated_at",
}

// scanApp scans a row into an App struct.
func scanApp(scanner interface{ Scan(...any) error }) (*models.App, error) {
	var a models.App
	var cats string
	err := scanner.Scan(
		&a.ID, &a.Name, &a.Slug, &a.Description, &a.AuthorID,
		&cats, &a.InstallCount, &a.InstallCountWeek,
		&a.Approved, &a.IconURL, &a.LatestVersion, &a.VersionUpdatedAt,
		&a.CreatedAt, &a.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	if cats != "" {
		a.Categories = strings.Split(cats, ",")
	}
	return &a, nil
}

// buildWhere translates a Filter into a WHERE clause and its arguments.
// Filter keys are visited in sorted order so the generated SQL is stable.
// Unknown fields are an error and propagate to the caller.
func buildWhere(f Filter) (string, []any, error) {
	if f.IsNever() {
		return "FALSE", nil, nil
	}
	if len(f) == 0 {
		return "TRUE", nil, nil
	}

	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var clauses []string
	var args []any
	for _, key := range keys {
		value := f[key]

		if key == "category" {
			args = append(args, value)
			clauses = append(clauses, fmt.Sprintf("$%d = ANY(categories)", len(args)))
			continue
		}

		col, ok := filterColumns[key]
		if !ok {
			return "", nil, fmt.Errorf("filter apps: unsupported field %q", key)
		}

		if ids, isIn := value.(In); isIn {
			if len(ids) == 0 {
				// Empty membership matches nothing.
				return "FALSE", nil, nil
			}
			placeholders := make([]string, len(ids))
			for i, id := range ids {
				args = append(args, id)
				placeholders[i] = fmt.Sprintf("$%d", len(args))
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")))
			continue
		}

		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	return strings.Join(clauses, " AND "), args, nil
}

// buildOrder translates FindOptions.Sort into an ORDER BY clause.
// With no sort terms, results come back in name order so listings are
// deterministic.
func buildOrder(opts FindOptions) (string, error) {
	if len(opts.Sort) == 0 {
		return "name ASC", nil
	}
	terms := make([]string, len(opts.Sort))
	for i, s := range opts.Sort {
		col, ok := sortColumns[s.Field]
		if !ok {
			return "", fmt.Errorf("sort apps: unsupported field %q", s.Field)
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		terms[i] = col + " " + dir
	}
	return strings.Join(terms, ", "), nil
}

// Find returns all apps matching the filter, ordered and paginated per
// opts. A never filter or empty membership short-circuits without
// touching the database.
func (s *AppStore) Find(f Filter, opts FindOptions) ([]models.App, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return nil, err
	}
	if where == "FALSE" {
		return nil, nil
	}

	order, err := buildOrder(opts)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + appColumns + ` FROM apps WHERE ` + where + ` ORDER BY ` + order
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("find apps: %w", err)
	}
	defer rows.Close()

	var items []models.App
	for rows.Next() {
		a, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan app: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// FindOne returns the first app matching the filter under the given
// ordering, or nil if none matches.
func (s *AppStore) FindOne(f Filter, opts FindOptions) (*models.App, error) {
	opts.Limit = 1
	opts.Offset = 0
	items, err := s.Find(f, opts)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// FindByID retrieves an app by ID. Returns nil if not found.
func (s *AppStore) FindByID(id uuid.UUID) (*models.App, error) {
	row := s.db.QueryRow(`SELECT `+appColumns+` FROM apps WHERE id = $1`, id)
	a, err := scanApp(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find app by id: %w", err)
	}
	return a, nil
}

// FindBySlug retrieves an app by its URL slug. Returns nil if not found.
func (s *AppStore) FindBySlug(slug string) (*models.App, error) {
	row := s.db.QueryRow(`SELECT `+appColumns+` FROM apps WHERE slug = $1`, slug)
	a, err := scanApp(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find app by slug: %w", err)
	}
	return a, nil
}

// Create inserts a new app together with its first version, in one
// transaction, and returns the stored app. New apps start unapproved.
func (s *AppStore) Create(a *models.App, version, changelog string) (*models.App, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		INSERT INTO apps (name, slug, description, author_id, categories,
		                  icon_url, latest_version, version_updated_at)
		VALUES ($1, $2, $3, $4, string_to_array(NULLIF($5, ''), ','), $6, $7, NOW())
		RETURNING `+appColumns,
		a.Name, a.Slug, a.Description, a.AuthorID,
		strings.Join(a.Categories, ","), a.IconURL, version,
	)
	result, err := scanApp(row)
	if err != nil {
		return nil, fmt.Errorf("create app: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO app_versions (app_id, version, changelog, created_at)
		VALUES ($1, $2, $3, $4)
	`, result.ID, version, changelog, result.VersionUpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create app version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create app: %w", err)
	}
	return result, nil
}

// Update modifies an app's editable fields (name, description, categories,
// icon). Version changes go through AddVersion.
func (s *AppStore) Update(a *models.App) error {
	_, err := s.db.Exec(`
		UPDATE apps SET
			name = $1, description = $2,
			categories = string_to_array(NULLIF($3, ''), ','),
			icon_url = $4, last_updated = NOW()
		WHERE id = $5
	`, a.Name, a.Description, strings.Join(a.Categories, ","), a.IconURL, a.ID)
	if err != nil {
		return fmt.Errorf("update app: %w", err)
	}
	return nil
}

// AddVersion appends a version to the app's history and bumps the
// denormalized latest-version columns in the same transaction, so a
// reader never sees a history entry newer than the denormalized stamp.
func (s *AppStore) AddVersion(appID uuid.UUID, version, changelog string) (*models.AppVersion, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	v := &models.AppVersion{}
	err = tx.QueryRow(`
		INSERT INTO app_versions (app_id, version, changelog)
		VALUES ($1, $2, $3)
		RETURNING id, app_id, version, changelog, created_at
	`, appID, version, changelog).Scan(
		&v.ID, &v.AppID, &v.Version, &v.Changelog, &v.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add app version: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE apps SET latest_version = $1, version_updated_at = $2, last_updated = $2
		WHERE id = $3
	`, v.Version, v.CreatedAt, appID)
	if err != nil {
		return nil, fmt.Errorf("bump latest version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add version: %w", err)
	}
	return v, nil
}

// Versions returns an app's version history, newest first.
func (s *AppStore) Versions(appID uuid.UUID) ([]models.AppVersion, error) {
	rows, err := s.db.Query(`
		SELECT id, app_id, version, changelog, created_at
		FROM app_versions WHERE app_id = $1
		ORDER BY created_at DESC
	`, appID)
	if err != nil {
		return nil, fmt.Errorf("list app versions: %w", err)
	}
	defer rows.Close()

	var items []models.AppVersion
	for rows.Next() {
		var v models.AppVersion
		if err := rows.Scan(&v.ID, &v.AppID, &v.Version, &v.Changelog, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan app version: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// SetApproved flips an app's approval state.
func (s *AppStore) SetApproved(id uuid.UUID, approved bool) error {
	_, err := s.db.Exec(`UPDATE apps SET approved = $1, last_updated = NOW() WHERE id = $2`,
		approved, id)
	if err != nil {
		return fmt.Errorf("set app approved: %w", err)
	}
	return nil
}

// RecordInstall bumps the install counters for an app.
func (s *AppStore) RecordInstall(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE apps SET install_count = install_count + 1,
		                install_count_week = install_count_week + 1
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("record install: %w", err)
	}
	return nil
}

// ResetWeeklyCounts zeroes install_count_week across the catalog. Run by
// the catalog owner on a weekly schedule.
func (s *AppStore) ResetWeeklyCounts() error {
	_, err := s.db.Exec(`UPDATE apps SET install_count_week = 0`)
	if err != nil {
		return fmt.Errorf("reset weekly counts: %w", err)
	}
	return nil
}

// Delete removes an app and, via ON DELETE CASCADE, its versions and
// install records.
func (s *AppStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM apps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete app: %w", err)
	}
	return nil
}
