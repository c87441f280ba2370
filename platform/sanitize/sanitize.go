// Package sanitize provides text sanitization utilities to prevent XSS attacks
// and unsafe object keys.
package sanitize

import (
	"path"
	"regexp"
	"strings"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	// unsafeKeyChars matches anything not allowed in an object key segment
	unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

const maxFileNameLength = 120

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes a string for safe text storage by stripping HTML.
// Use for user-provided text fields like remarks and notes.
func Text(s string) string {
	return StripHTML(s)
}

// TextPtr is a helper for optional string pointers
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}

// FileName reduces an uploaded file name to a single safe key segment.
// Directory parts are dropped and every character outside [A-Za-z0-9._-]
// becomes an underscore.
func FileName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	safe := unsafeKeyChars.ReplaceAllString(base, "_")
	safe = strings.TrimLeft(safe, ".")
	if safe == "" {
		return "file"
	}
	if len(safe) > maxFileNameLength {
		ext := path.Ext(safe)
		if len(ext) > 16 {
			ext = ""
		}
		safe = safe[:maxFileNameLength-len(ext)] + ext
	}
	return safe
}
