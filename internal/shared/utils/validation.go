package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/GriffinCanCode/AppLauncher/backend/internal/shared/types"
)

// Draft limits
const (
	MaxNameLength        = 50
	MaxDescriptionLength = 200
	MaxCategoryLength    = 64
	MaxTagLength         = 32
	MaxTagCount          = 20
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// ValidateString checks a field's rune length
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && strings.TrimSpace(value) == "" {
		return types.NewValidationError(fieldName, "is required")
	}
	if value == "" {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return types.NewValidationError(fieldName, fmt.Sprintf("must be at least %d characters", minLen))
	}
	if length > maxLen {
		return types.NewValidationError(fieldName, fmt.Sprintf("must not exceed %d characters", maxLen))
	}
	if strings.Contains(value, "\x00") {
		return types.NewValidationError(fieldName, "contains invalid characters")
	}
	return nil
}

// ValidateName validates an app name
func ValidateName(name string) error {
	return ValidateString(name, "name", 1, MaxNameLength, true)
}

// ValidateDescription validates an optional app description
func ValidateDescription(description string) error {
	return ValidateString(description, "description", 0, MaxDescriptionLength, false)
}

// ValidateCategory validates an optional category label
func ValidateCategory(category string) error {
	return ValidateString(category, "category", 0, MaxCategoryLength, false)
}

// ValidateTags validates a tag list
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagCount {
		return types.NewValidationError("tags", fmt.Sprintf("must not exceed %d entries", MaxTagCount))
	}
	for i, tag := range tags {
		if err := ValidateString(tag, fmt.Sprintf("tags[%d]", i), 1, MaxTagLength, false); err != nil {
			return err
		}
	}
	return nil
}

// ValidateWebURL parses raw and requires an http(s) scheme and a host
func ValidateWebURL(raw, fieldName string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, types.NewValidationError(fieldName, "is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, types.NewValidationError(fieldName, "is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, types.NewValidationError(fieldName, "must use http or https")
	}
	if u.Hostname() == "" {
		return nil, types.NewValidationError(fieldName, "must include a host")
	}
	return u, nil
}

// Truncate shortens s to at most n runes
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}

// SanitizeFilename replaces everything outside [a-zA-Z0-9_-] with '_'
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// SplitTags splits comma separated tags, trimming and dropping empties
func SplitTags(raw ...string) []string {
	var tags []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if tag := strings.TrimSpace(part); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
