package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Account field names.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldLogin    = "login"
)

// MinPasswordLength is the shortest password accepted.
const MinPasswordLength = 8

const passwordSymbols = "#?!@$%^&*-"

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{5,}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Username requires a leading letter followed by at least five letters or digits.
func Username(s string) error {
	if !usernamePattern.MatchString(s) {
		return fieldError(FieldUsername, "Please choose a username that starts with a letter and has at least 6 characters. No special symbols allowed.")
	}
	return nil
}

// Email performs a shape check only.
func Email(s string) error {
	if !emailPattern.MatchString(s) {
		return fieldError(FieldEmail, "That doesn't look like a valid email. Try something like name@example.com")
	}
	return nil
}

// Password requires MinPasswordLength characters including an upper-case
// letter, a lower-case letter, a digit and one of #?!@$%^&*-.
func Password(s string) error {
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	if utf8.RuneCountInString(s) < MinPasswordLength || !lower || !upper || !digit || !symbol {
		return fieldError(FieldPassword, "Password must be at least 8 characters long and include uppercase, lowercase, a number, and a special character.")
	}
	return nil
}

// Login accepts either an email address or a username.
func Login(s string) error {
	if s == "" {
		return fieldError(FieldLogin, "Both email/username and password are required.")
	}
	if strings.Contains(s, "@") {
		if emailPattern.MatchString(s) {
			return nil
		}
	} else if usernamePattern.MatchString(s) {
		return nil
	}
	return fieldError(FieldLogin, "That doesn't look like a valid username or email.")
}
