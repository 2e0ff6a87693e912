package validation

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Validation rule patterns
var (
	// Anything a folder name segment may not contain after sanitizing
	NonAlphanumericPattern = `[^A-Za-z0-9]`

	// Captured images are written as scan_<epoch millis>.jpg; uploads of other
	// recognized formats are accepted when listing
	ImageFilePattern = `(?i)^[^/\\]+\.(jpg|jpeg|png)$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	NonAlphanumeric *regexp.Regexp
	ImageFile       *regexp.Regexp
}{
	NonAlphanumeric: regexp.MustCompile(NonAlphanumericPattern),
	ImageFile:       regexp.MustCompile(ImageFilePattern),
}

// SanitizeSegment replaces every character outside [A-Za-z0-9] with an underscore.
// The result has the same number of characters as the input.
func SanitizeSegment(value string) string {
	return CompiledPatterns.NonAlphanumeric.ReplaceAllString(value, "_")
}

// IsImageFile reports whether a file name has a recognized image extension
func IsImageFile(name string) bool {
	return CompiledPatterns.ImageFile.MatchString(name)
}

// IsSafePathSegment reports whether value can be used as a single directory entry
// below the storage root without escaping it.
func IsSafePathSegment(value string) bool {
	if value == "" || value == "." || value == ".." {
		return false
	}
	if strings.ContainsAny(value, `/\`) || strings.ContainsRune(value, 0) {
		return false
	}
	return filepath.Base(value) == value
}
