package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxIdentifierLength = 256

// ValidateIdentifier validates a user supplied identifier (dataset name,
// run id) before it is placed into a URL path or cache key.
//
// The rules are conservative:
//   - No empty identifiers
//   - No control characters
//   - No path traversal sequences (.., //, backslash)
//   - Maximum length of 256 characters
func ValidateIdentifier(kind, value string) error {
	if value == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}

	if len(value) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", kind, maxIdentifierLength)
	}

	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", kind)
		}
	}

	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(value, pattern) {
			return New(ErrCodeInvalidInput, "%s contains invalid characters: %q", kind, pattern)
		}
	}

	return nil
}

// datasetNameRegex matches dataset names as the lineage service stores them
// (snake_case table-like names, optionally schema-qualified).
var datasetNameRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// ValidateDatasetName validates a dataset name.
func ValidateDatasetName(name string) error {
	if err := ValidateIdentifier("dataset name", name); err != nil {
		return err
	}
	if !datasetNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid dataset name: %q", name)
	}
	return nil
}

// runIDRegex matches run identifiers (UUIDs and opaque tokens).
var runIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// ValidateRunID validates a pipeline run identifier.
func ValidateRunID(id string) error {
	if err := ValidateIdentifier("run id", id); err != nil {
		return err
	}
	if !runIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid run id: %q", id)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
