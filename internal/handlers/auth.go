package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"appmarket/internal/middleware"
	"appmarket/internal/models"
	"appmarket/internal/session"
	"appmarket/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

// Register creates a new member account and logs it in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	if msg := validateRegistration(req.Email, req.Password, req.DisplayName); msg != "" {
		writeError(w, msg, http.StatusBadRequest)
		return
	}

	existing, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("register lookup failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeError(w, "An account with that email already exists.", http.StatusConflict)
		return
	}

	user, err := a.userStore.Create(req.Email, req.Password, req.DisplayName, models.RoleMember)
	if err != nil {
		slog.Error("register create failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   true, // members have no 2FA step
	}); err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and creates a session. Admins get a session
// with TwoFADone=false and must complete TOTP verification before any
// admin endpoint accepts them.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	user, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		writeError(w, "Invalid email or password.", http.StatusUnauthorized)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   !user.IsAdmin(),
	}); err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":           user,
		"two_fa_pending": user.IsAdmin(),
		"two_fa_setup":   user.Needs2FASetup(),
	})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	w.WriteHeader(http.StatusNoContent)
}

// TwoFASetup generates a TOTP secret for the logged-in admin and returns
// the provisioning QR code as base64 PNG alongside the plain secret.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "appmarket",
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":  key.Secret(),
		"qr_code": base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify validates the TOTP code and completes admin authentication.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	if user.TOTPSecret == nil {
		writeError(w, "Two-factor authentication is not set up.", http.StatusBadRequest)
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, "Invalid code.", http.StatusUnauthorized)
		return
	}

	// First successful verification completes enrollment.
	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		writeError(w, "An unexpected error occurred.", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"verified": true})
}
