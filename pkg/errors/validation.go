package errors

import (
	"strings"
	"unicode"
)

// Limits applied to untrusted identifiers arriving over the HTTP surface.
const (
	maxNameLength  = 256
	maxQueryLength = 512
)

// ValidateNodeName validates a node name received from a client.
// It rejects names that could be used for injection into rendered output:
//   - No empty names
//   - No control characters
//   - No markup delimiters (<, >, &, quotes)
//   - Maximum length of 256 characters
//
// Whether the name exists in a report is checked by the caller.
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "node name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "node name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, `<>&"'`) {
		return New(ErrCodeInvalidInput, "node name contains markup characters: %q", name)
	}
	return nil
}

// ValidateSearchQuery validates a tree search string. Empty queries are
// valid and clear the search.
func ValidateSearchQuery(q string) error {
	if len(q) > maxQueryLength {
		return New(ErrCodeInvalidInput, "search query too long (max %d characters)", maxQueryLength)
	}
	for _, r := range q {
		if r == '\x00' || (unicode.IsControl(r) && r != '\t') {
			return New(ErrCodeInvalidInput, "search query contains invalid characters")
		}
	}
	return nil
}
