// Package validation implements the per-endpoint input schemas. Each
// request type exposes a Validate method returning field-level
// failures; handlers reject the request with VALIDATION_ERROR before
// any store is touched.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FieldError describes one failed field of an input payload. The
// slice of these becomes the `details` member of the error envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Kenyan mobile numbers in international form: +254 followed by a 1
// or 7 prefix and eight digits.
var phonePattern = regexp.MustCompile(`^\+254[17]\d{8}$`)

// ValidEmail checks for one @ with nonempty local and domain parts
// and a dot in the domain.
func ValidEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") {
		return false
	}
	domain := s[at+1:]
	if domain == "" {
		return false
	}
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// ValidPhone checks the regional international phone format.
func ValidPhone(s string) bool { return phonePattern.MatchString(s) }

// ValidRole checks the role enumeration.
func ValidRole(s string) bool { return s == "FARMER" || s == "BUYER" }

// ValidPassword enforces the credential policy: any nonempty string
// is accepted. Complexity checking is intentionally disabled; the
// interface is kept so the policy can change without touching call
// sites.
func ValidPassword(s string) (ok bool, errs []FieldError) {
	if s == "" {
		return false, []FieldError{{Field: "password", Message: "Password is required"}}
	}
	return true, nil
}

// ValidFullName enforces the 2..100 character bound.
func ValidFullName(s string) bool {
	n := len(strings.TrimSpace(s))
	return n >= 2 && n <= 100
}

// ParsePage coerces a page query parameter. Empty means page 1;
// anything non-numeric or < 1 is a field error.
func ParsePage(s string) (int, *FieldError) {
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, &FieldError{Field: "page", Message: "Page must be >= 1"}
	}
	return n, nil
}

// ParseLimit coerces a limit query parameter into [1, max]. Empty
// means the default of 10.
func ParseLimit(s string, max int) (int, *FieldError) {
	if s == "" {
		if max < 10 {
			return max, nil
		}
		return 10, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 100 {
		return 0, &FieldError{Field: "limit", Message: "Limit must be between 1 and 100"}
	}
	if n > max {
		return max, nil
	}
	return n, nil
}

// ParseFloat coerces a numeric query parameter. Empty yields nil.
func ParseFloat(field, s string) (*float64, *FieldError) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &FieldError{Field: field, Message: "Must be a number"}
	}
	return &f, nil
}

// ParseTime coerces an RFC 3339 query parameter. Empty yields nil.
func ParseTime(field, s string) (*time.Time, *FieldError) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, &FieldError{Field: field, Message: "Must be an RFC 3339 timestamp"}
	}
	return &t, nil
}
