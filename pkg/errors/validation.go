package errors

import (
	"strings"
	"unicode"
)

const (
	maxIDLength    = 256
	maxLabelLength = 1024
)

// ValidateID validates an entity, relation or fact identifier.
//
// The rules are intentionally conservative because ids double as cache key
// components and URL path segments in the HTTP API:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators
//   - Maximum length of 256 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "id %q contains whitespace or control characters", id)
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidInput, "id %q cannot contain path separators", id)
	}

	return nil
}

// ValidateLabel validates a display label. Labels may be empty (the editor
// starts a relabel with an empty buffer) but may not carry control
// characters other than tab.
func ValidateLabel(label string) error {
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}

	return nil
}
