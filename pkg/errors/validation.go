package errors

import (
	"strings"
	"unicode"
)

const (
	maxIDLength  = 128
	maxKeyLength = 256
	maxNameLen   = 200
)

// ValidateEntityID validates an entity identifier supplied by a caller
// (CLI argument, URL path segment).
//
// IDs are opaque, but they are echoed into storage keys and URLs, so the
// rules are conservative:
//   - No empty IDs
//   - No whitespace or control characters
//   - No path separators
//   - Maximum length of 128 characters
func ValidateEntityID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "entity id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "entity id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "entity id contains invalid characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "entity id cannot contain path separators")
	}
	return nil
}

// ValidateStorageKey validates a persistence record key.
// File backends turn keys into file names, so traversal sequences are rejected.
func ValidateStorageKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "storage key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "storage key too long (max %d characters)", maxKeyLength)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "storage key contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "storage key contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidateName validates a display name for a machine or project.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}
	if len(name) > maxNameLen {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", maxNameLen)
	}
	for _, r := range name {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has one of the given schemes (http, https, ws, wss).
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes %s", strings.Join(schemes, ", "))
}
