package errors

import (
	"strings"
	"unicode"
)

// maxNewickLength bounds accepted Newick input (16 MiB).
const maxNewickLength = 16 << 20

// ValidateNewick performs cheap sanity checks on Newick input before parsing.
//
// The rules are intentionally conservative:
//   - No empty input
//   - Must end with ';' (trailing whitespace allowed)
//   - No control characters other than whitespace
//   - Balanced parentheses
//   - Maximum length of 16 MiB
//
// Grammar errors are reported by the parser itself.
func ValidateNewick(s string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return New(ErrCodeInvalidNewick, "newick input cannot be empty")
	}
	if len(trimmed) > maxNewickLength {
		return New(ErrCodeInvalidNewick, "newick input too long (max %d bytes)", maxNewickLength)
	}
	if !strings.HasSuffix(trimmed, ";") {
		return New(ErrCodeInvalidNewick, "newick input must end with ';'")
	}

	depth := 0
	quoted, comment := false, false
	for _, r := range trimmed {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return New(ErrCodeInvalidNewick, "newick input contains invalid control characters")
		}
		switch {
		case quoted:
			quoted = r != '\''
		case comment:
			comment = r != ']'
		case r == '\'':
			quoted = true
		case r == '[':
			comment = true
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return New(ErrCodeInvalidNewick, "unbalanced parentheses")
			}
		}
	}
	if depth != 0 {
		return New(ErrCodeInvalidNewick, "unbalanced parentheses")
	}
	return nil
}

// ValidateLabel validates a node label for export.
// Labels may be empty (unlabeled internal nodes) but must not contain
// control characters and must stay under 256 characters.
func ValidateLabel(label string) error {
	if len(label) > 256 {
		return New(ErrCodeInvalidInput, "label too long (max 256 characters)")
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}
