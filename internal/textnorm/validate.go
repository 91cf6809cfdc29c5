package textnorm

import "regexp"

var (
	// letters or digits first, then letters, digits, whitespace and periods
	validInputPattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}\s.]*$`)
	numericPattern    = regexp.MustCompile(`^\d+(?:/\d+)?$`)
)

// ValidInput is the light syntactic check applied to search box input before
// suggestions are offered.
func ValidInput(s string) bool {
	return validInputPattern.MatchString(s)
}

// IsNumericInput reports whether s is a parcel number such as "45" or "12/3".
func IsNumericInput(s string) bool {
	return numericPattern.MatchString(s)
}
