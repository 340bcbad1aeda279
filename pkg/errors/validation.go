package errors

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// DateLayout is the DD.MM.YYYY layout used for poll dates.
const DateLayout = "02.01.2006"

// ParseDate parses a poll date in DD.MM.YYYY form.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, New(ErrCodeInvalidDate, "date cannot be empty")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, Wrap(ErrCodeInvalidDate, err, "date %q is not DD.MM.YYYY", s)
	}
	return t, nil
}

// ValidatePercentage checks that p is a finite value within [0, 100].
// The name is used in the error message.
func ValidatePercentage(name string, p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return New(ErrCodeInvalidPercentage, "%s is not a finite number", name)
	}
	if p < 0 || p > 100 {
		return New(ErrCodeInvalidPercentage, "%s = %v out of range [0, 100]", name, p)
	}
	return nil
}

// ValidateArtifactName validates a file name used for a persisted result image.
// It must be a simple basename so that it cannot escape the week directory.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 128 characters
//   - No control characters
//   - No path separators or traversal sequences
//   - No hidden files (leading dot)
func ValidateArtifactName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "artifact name cannot be empty")
	}

	const maxNameLength = 128
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPath, "artifact name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "artifact name contains invalid characters")
		}
	}

	if strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidPath, "artifact name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "artifact name cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "artifact name cannot be a hidden file")
	}

	return nil
}
