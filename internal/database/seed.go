package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// defaultCategories are created on first boot so the catalog has a
// browsable structure before an admin curates their own.
var defaultCategories = []struct {
	Name        string
	Slug        string
	Description string
}{
	{"Productivity", "productivity", "Tools that help you get things done."},
	{"Games", "games", "Games of every kind."},
	{"Developer Tools", "developer-tools", "Utilities for building software."},
	{"Education", "education", "Learning and reference apps."},
}

// Seed populates the database with initial development data.
// It creates a default admin user and the starter categories if the
// database is empty. The admin will be prompted to set up 2FA on first
// login (totp_enabled = false).
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled, they must set it up
	// on first login.
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@appmarket.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	for i, c := range defaultCategories {
		_, err = db.Exec(`
			INSERT INTO categories (name, slug, description, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name) DO NOTHING
		`, c.Name, c.Slug, c.Description, i)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.Name, err)
		}
	}

	slog.Info("database seeded with default admin user and categories",
		"email", "admin@appmarket.local",
		"password", "admin",
	)

	return nil
}
