package common

import "strings"

// FirstNonBlank returns the first value that is not empty after trimming whitespace, trimmed.
// It returns "" when every value is blank.
//
// Parameters:
//   - values: candidate strings in priority order
//
// Returns:
//   - string: the first non-blank value
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
