package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicy = bluemonday.UGCPolicy()
	subjectPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks, keeping user-generated formatting.
func Sanitize(input string) string {
	return contentPolicy.Sanitize(input)
}

// SanitizeSubject strips all markup from a one-line subject and trims it.
func SanitizeSubject(input string) string {
	return strings.TrimSpace(subjectPolicy.Sanitize(input))
}
