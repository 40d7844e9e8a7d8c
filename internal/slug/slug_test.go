package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple app name", "Pixel Painter", "pixel-painter"},
		{"name with number", "Pixel Painter 2", "pixel-painter-2"},
		{"already lowercase", "terminal emulator", "terminal-emulator"},
		{"punctuation stripped", "Notes & Tasks: Pro!", "notes-tasks-pro"},
		{"version in name", "Editor (v2.0) [Beta]", "editor-v20-beta"},
		{"apostrophe", "Dev's Toolbox", "devs-toolbox"},
		{"leading and trailing spaces", "  Weather Widget  ", "weather-widget"},
		{"consecutive spaces", "Photo    Viewer", "photo-viewer"},
		{"existing hyphen kept", "read-it-later", "read-it-later"},
		{"hyphen runs collapsed", "sync---client", "sync-client"},
		{"surrounding hyphens trimmed", "--launcher--", "launcher"},
		{"category name", "Developer Tools", "developer-tools"},
		{"empty string", "", ""},
		{"only symbols", "!@#$%", ""},
		{"only digits", "2048", "2048"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Feeding a generated slug back through must not change it: app slugs are
// stored once at submission and used in URLs forever.
func TestGenerateIdempotent(t *testing.T) {
	for _, s := range []string{"pixel-painter-2", "a", "2048", "developer-tools"} {
		if got := Generate(s); got != s {
			t.Errorf("Generate(%q) = %q, want unchanged", s, got)
		}
	}
}
