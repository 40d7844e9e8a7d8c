// Package store provides database access methods for all appmarket
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"appmarket/internal/models"
)

// UserStore handles all user-related database operations, including each
// user's installed-apps state.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, email, password_hash, display_name, role, totp_secret, totp_enabled, created_at, updated_at`

// scanUser scans a row into a User struct.
func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := scanner.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Role,
		&u.TOTPSecret, &u.TOTPEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// Create inserts a new user with a bcrypt-hashed password.
func (s *UserStore) Create(email, password, displayName string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		email, string(hash), displayName, role,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// SetTOTPSecret saves the TOTP secret for a user (during 2FA setup).
func (s *UserStore) SetTOTPSecret(userID uuid.UUID, secret string) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, userID)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for a user (after successful code verification).
func (s *UserStore) EnableTOTP(userID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// InstalledApps returns the user's installed-apps records, oldest install
// first. An empty slice means the user has installed nothing.
func (s *UserStore) InstalledApps(userID uuid.UUID) ([]models.InstalledApp, error) {
	rows, err := s.db.Query(`
		SELECT user_id, app_id, version, version_at, installed_at
		FROM installed_apps WHERE user_id = $1
		ORDER BY installed_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list installed apps: %w", err)
	}
	defer rows.Close()

	var items []models.InstalledApp
	for rows.Next() {
		var ia models.InstalledApp
		if err := rows.Scan(&ia.UserID, &ia.AppID, &ia.Version, &ia.VersionAt, &ia.InstalledAt); err != nil {
			return nil, fmt.Errorf("scan installed app: %w", err)
		}
		items = append(items, ia)
	}
	return items, rows.Err()
}

// Install records that the user installed the app at its current latest
// version. Reinstalling (or updating) overwrites the previous record, so
// the stored version timestamp always reflects the most recent install.
func (s *UserStore) Install(userID uuid.UUID, app *models.App) error {
	_, err := s.db.Exec(`
		INSERT INTO installed_apps (user_id, app_id, version, version_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, app_id)
		DO UPDATE SET version = $3, version_at = $4, installed_at = NOW()
	`, userID, app.ID, app.LatestVersion, app.VersionUpdatedAt)
	if err != nil {
		return fmt.Errorf("install app: %w", err)
	}
	return nil
}

// Uninstall removes the user's install record for an app. Removing a
// record that does not exist is not an error.
func (s *UserStore) Uninstall(userID, appID uuid.UUID) error {
	_, err := s.db.Exec(`
		DELETE FROM installed_apps WHERE user_id = $1 AND app_id = $2
	`, userID, appID)
	if err != nil {
		return fmt.Errorf("uninstall app: %w", err)
	}
	return nil
}

// Delete removes a user by ID. Install records cascade.
func (s *UserStore) Delete(userID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
