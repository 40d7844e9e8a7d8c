// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides shared database setup for store integration
// tests. Tests are skipped when PostgreSQL is unavailable.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"appmarket/internal/database"
	"appmarket/internal/models"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens the test PostgreSQL and runs migrations, skipping the test
// when the database is not reachable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "appmarket")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "appmarket")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// suffix returns a short random string for unique test fixtures.
func suffix() string {
	return uuid.NewString()[:8]
}

// createTestUser inserts a member user and registers cleanup.
func createTestUser(t *testing.T, users *UserStore) *models.User {
	t.Helper()
	u, err := users.Create("user-"+suffix()+"@test.local", "test-password-1", "Test User", models.RoleMember)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { users.Delete(u.ID) })
	return u
}

// createTestApp inserts an app for the given author and registers cleanup.
func createTestApp(t *testing.T, apps *AppStore, authorID uuid.UUID, name string, categories []string) *models.App {
	t.Helper()
	a, err := apps.Create(&models.App{
		Name:        name,
		Slug:        "app-" + suffix(),
		Description: "A test app.",
		AuthorID:    authorID,
		Categories:  categories,
	}, "1.0.0", "Initial release.")
	if err != nil {
		t.Fatalf("create test app: %v", err)
	}
	t.Cleanup(func() { apps.Delete(a.ID) })
	return a
}
