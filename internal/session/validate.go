package session

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wolfman30/sports-travel-platform/internal/apperr"
)

// Strength grades a password for the registration form meter.
type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[@$!%*?&#]`)
)

// ValidateEmail checks the address shape accepted by the login form.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation("email", "Email is required")
	}
	if !emailPattern.MatchString(email) {
		return apperr.Validation("email", "Please enter a valid email address")
	}
	return nil
}

// ValidatePassword enforces the registration password rules.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return apperr.Validation("password", "Password is required")
	case utf8.RuneCountInString(password) < 8:
		return apperr.Validation("password", "Password must be at least 8 characters long")
	case !lowerPattern.MatchString(password):
		return apperr.Validation("password", "Password must contain at least one lowercase letter")
	case !upperPattern.MatchString(password):
		return apperr.Validation("password", "Password must contain at least one uppercase letter")
	case !digitPattern.MatchString(password):
		return apperr.Validation("password", "Password must contain at least one number")
	}
	return nil
}

// PasswordStrength scores length and character classes.
func PasswordStrength(password string) Strength {
	n := utf8.RuneCountInString(password)
	score := 0
	if n >= 8 {
		score++
	}
	if n >= 12 {
		score++
	}
	for _, re := range []*regexp.Regexp{lowerPattern, upperPattern, digitPattern, specialPattern} {
		if re.MatchString(password) {
			score++
		}
	}
	switch {
	case score <= 2:
		return StrengthWeak
	case score <= 4:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}

// ValidateName requires at least two characters after trimming.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("name", "Name is required")
	}
	if utf8.RuneCountInString(name) < 2 {
		return apperr.Validation("name", "Name must be at least 2 characters long")
	}
	return nil
}

// ValidateRegistration checks every registration field and returns them keyed
// by field name.
func ValidateRegistration(name, email, password string) map[string]string {
	out := map[string]string{}
	for _, err := range []error{ValidateName(name), ValidateEmail(email), ValidatePassword(password)} {
		if e, ok := err.(*apperr.Error); ok {
			out[e.Field] = e.Msg
		}
	}
	return out
}
