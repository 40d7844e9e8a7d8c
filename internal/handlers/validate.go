package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for account and catalog fields.
const (
	maxEmailLen       = 254
	minPasswordLen    = 8
	maxPasswordLen    = 200
	maxDisplayNameLen = 100
	maxAppNameLen     = 200
	maxDescriptionLen = 50_000
	maxVersionLen     = 50
	maxChangelogLen   = 20_000
	maxCategoryLen    = 100
	maxCategories     = 10
)

// validateRegistration checks signup inputs and returns the first error found.
func validateRegistration(email, password, displayName string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long (max 254 characters)."
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Email address is not valid."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	if utf8.RuneCountInString(password) > maxPasswordLen {
		return "Password is too long (max 200 characters)."
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return "Display name is required."
	}
	if utf8.RuneCountInString(displayName) > maxDisplayNameLen {
		return "Display name is too long (max 100 characters)."
	}
	return ""
}

// validateApp checks app submission inputs and returns the first error found.
func validateApp(name, description, version string, categories []string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "App name is required."
	}
	if utf8.RuneCountInString(name) > maxAppNameLen {
		return "App name is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 50,000 characters)."
	}
	if msg := validateVersion(version, ""); msg != "" {
		return msg
	}
	if len(categories) > maxCategories {
		return "Too many categories (max 10)."
	}
	for _, c := range categories {
		if strings.TrimSpace(c) == "" {
			return "Categories must not be blank."
		}
		if utf8.RuneCountInString(c) > maxCategoryLen {
			return "Category name is too long (max 100 characters)."
		}
		// Commas are the on-disk tag separator and would split one tag
		// into several on the next read.
		if strings.Contains(c, ",") {
			return "Category names must not contain commas."
		}
	}
	return ""
}

// validateVersion checks a version submission and returns the first error found.
func validateVersion(version, changelog string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return "Version is required."
	}
	if utf8.RuneCountInString(version) > maxVersionLen {
		return "Version is too long (max 50 characters)."
	}
	if utf8.RuneCountInString(changelog) > maxChangelogLen {
		return "Changelog is too long (max 20,000 characters)."
	}
	return ""
}

// validateCategory checks category form inputs and returns the first error found.
func validateCategory(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryLen {
		return "Category name is too long (max 100 characters)."
	}
	if strings.Contains(name, ",") {
		return "Category names must not contain commas."
	}
	return ""
}
