package main

import (
	"regexp"
	"strings"
)

var (
	emailRegexp    = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	hexColorRegexp = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	lowerRegexp    = regexp.MustCompile(`[a-z]`)
	upperRegexp    = regexp.MustCompile(`[A-Z]`)
	digitRegexp    = regexp.MustCompile(`[0-9]`)
)

// validator accumulates field-level errors; the first error per field wins.
type validator struct {
	errors []fieldError
	seen   map[string]bool
}

func newValidator() *validator {
	return &validator{seen: make(map[string]bool)}
}

func (v *validator) hasErrors() bool {
	return len(v.errors) != 0
}

func (v *validator) fieldErrors() []fieldError {
	return v.errors
}

func (v *validator) checkCond(cond bool, field, msg string) {
	if cond {
		return
	}
	if !v.seen[field] {
		v.seen[field] = true
		v.errors = append(v.errors, fieldError{Field: field, Message: msg})
	}
}

func (v *validator) checkUsername(username string) {
	v.checkCond(len(username) >= 3 && len(username) <= 50, "username", "must be between 3 and 50 characters")
	v.checkCond(usernameRegexp.MatchString(username), "username", "may only contain letters, digits and underscores")
}

func (v *validator) checkEmail(email string) {
	v.checkCond(email != "", "email", "must be provided")
	v.checkCond(emailRegexp.MatchString(email), "email", "must be a valid email address")
}

// checkPassword enforces the registration password policy. The 72 byte cap
// is bcrypt's input limit.
func (v *validator) checkPassword(password, field string) {
	v.checkCond(len(password) >= 6, field, "must be at least 6 characters long")
	v.checkCond(len(password) <= 72, field, "must be at most 72 characters long")
	hasMix := lowerRegexp.MatchString(password) && upperRegexp.MatchString(password) && digitRegexp.MatchString(password)
	v.checkCond(hasMix, field, "must contain a lower case letter, an upper case letter and a digit")
}

func (v *validator) checkColor(color string) {
	v.checkCond(hexColorRegexp.MatchString(color), "color", "must be a hex color code such as #FF0000")
}

func (v *validator) checkOneOf(value, field string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.checkCond(false, field, "must be one of "+strings.Join(allowed, ", "))
}
