package auth

import (
	"unicode"
	"unicode/utf8"
)

// Password length bounds, inclusive.
const (
	PasswordMinLength = 8
	PasswordMaxLength = 125
)

// Password policy violation messages, surfaced to the submitting form field.
const (
	ReasonLength    = "password must be between 8 and 125 characters long"
	ReasonUppercase = "password must contain at least one uppercase letter"
	ReasonDigit     = "password must contain at least one digit"
	ReasonSpecial   = "password must contain at least one special character"
)

// EvaluatePassword checks a candidate password against the strength policy
// and returns every violated rule, not just the first. An empty slice means
// the candidate is acceptable. The function is pure and never retains or logs
// the candidate.
func EvaluatePassword(candidate string) []string {
	var reasons []string

	if n := utf8.RuneCountInString(candidate); n < PasswordMinLength || n > PasswordMaxLength {
		reasons = append(reasons, ReasonLength)
	}

	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range candidate {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		reasons = append(reasons, ReasonUppercase)
	}
	if !hasDigit {
		reasons = append(reasons, ReasonDigit)
	}
	if !hasSpecial {
		reasons = append(reasons, ReasonSpecial)
	}

	return reasons
}
