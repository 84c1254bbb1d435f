// Package validation holds the single set of input rules shared by every auth
// operation. Validators are pure: they normalize their input and either return
// it or a *Error describing the first problem found.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	maxEmailLength = 254
	minNameLength  = 2
	maxNameLength  = 50
	minPassword    = 8

	// MaxPasswordBytes is the longest input bcrypt will hash.
	MaxPasswordBytes = 72

	// Symbols accepted for the special-character rule.
	PasswordSymbols = `!@#$%^&*(),.?":{}|<>`
)

// Unmet password rules, reported in this order.
const (
	RuleMinLength = "min_length"
	RuleUppercase = "uppercase"
	RuleLowercase = "lowercase"
	RuleNumber    = "number"
	RuleSpecial   = "special"
	RuleMaxLength = "max_length"
)

var allPasswordRules = []string{RuleMinLength, RuleUppercase, RuleLowercase, RuleNumber, RuleSpecial}

var (
	validate    = validator.New()
	namePattern = regexp.MustCompile(`^[\p{L} '\-]+$`)
	nameLetter  = regexp.MustCompile(`\p{L}`)
)

// Error is a field-level validation failure safe to show to the client.
type Error struct {
	Field   string
	Message string
	Rules   []string
}

func (e *Error) Error() string {
	return e.Field + ": " + e.Message
}

// Email trims and lower-cases s, then checks length and address grammar.
func Email(s string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(s))
	switch {
	case email == "":
		return "", &Error{Field: "email", Message: "Email is mandatory"}
	case len(email) > maxEmailLength:
		return "", &Error{Field: "email", Message: "Email must be at most 254 characters"}
	case validate.Var(email, "email") != nil:
		return "", &Error{Field: "email", Message: "Please enter a valid email address"}
	}
	return email, nil
}

// Name validates a first or last name. field is the JSON field name
// ("firstName", "lastName"), used for the message label.
func Name(field, s string) (string, error) {
	name := strings.TrimSpace(s)
	label := nameLabel(field)

	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return "", &Error{Field: field, Message: label + " is mandatory"}
	case n < minNameLength || n > maxNameLength:
		return "", &Error{Field: field, Message: label + " must be between 2 and 50 characters"}
	case !namePattern.MatchString(name):
		return "", &Error{Field: field, Message: label + " can only contain letters, spaces, hyphens and apostrophes"}
	case !nameLetter.MatchString(name):
		return "", &Error{Field: field, Message: label + " must contain at least one letter"}
	}
	return name, nil
}

// Password checks strength. Passwords are never trimmed.
func Password(s string) (string, error) {
	if s == "" {
		return "", &Error{
			Field:   "password",
			Message: "Password is mandatory",
			Rules:   append([]string(nil), allPasswordRules...),
		}
	}
	if len(s) > MaxPasswordBytes {
		return "", &Error{
			Field:   "password",
			Message: "Password must be at most 72 bytes",
			Rules:   []string{RuleMaxLength},
		}
	}
	if unmet := PasswordRules(s); len(unmet) > 0 {
		return "", &Error{
			Field:   "password",
			Message: "Password does not meet the strength requirements",
			Rules:   unmet,
		}
	}
	return s, nil
}

// PasswordRules returns the strength rules s does not satisfy.
func PasswordRules(s string) []string {
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			special = true
		}
	}

	var unmet []string
	if utf8.RuneCountInString(s) < minPassword {
		unmet = append(unmet, RuleMinLength)
	}
	if !upper {
		unmet = append(unmet, RuleUppercase)
	}
	if !lower {
		unmet = append(unmet, RuleLowercase)
	}
	if !digit {
		unmet = append(unmet, RuleNumber)
	}
	if !special {
		unmet = append(unmet, RuleSpecial)
	}
	if len(s) > MaxPasswordBytes {
		unmet = append(unmet, RuleMaxLength)
	}
	return unmet
}

// Required rejects blank codes and tokens.
func Required(field, s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", &Error{Field: field, Message: nameLabel(field) + " is mandatory"}
	}
	return v, nil
}

func nameLabel(field string) string {
	switch field {
	case "firstName":
		return "First name"
	case "lastName":
		return "Last name"
	case "code":
		return "Verification code"
	case "token":
		return "Reset token"
	}
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
