// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug generates the URL identifiers used for apps and categories.
package slug

import "strings"

// Generate turns an arbitrary name into a URL slug: lowercase ASCII
// letters, digits, and single hyphens. "Pixel Painter 2" becomes
// "pixel-painter-2". Anything else is dropped.
func Generate(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '\t' || r == '\n' || r == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
