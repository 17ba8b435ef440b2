package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"taskify/server/internal/models"
)

const (
	usernameMinLen    = 3
	usernameMaxLen    = 20
	passwordMinLen    = 6
	passwordMaxLen    = 50
	bcryptMaxBytes    = 72
	titleMaxLen       = 100
	descriptionMaxLen = 500
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func checkUsernameLength(v *ValidationError, username string) {
	if n := utf8.RuneCountInString(username); n < usernameMinLen || n > usernameMaxLen {
		v.add("username", "Username must be between 3 and 20 characters")
	}
}

func checkPasswordLength(v *ValidationError, password string) {
	if n := utf8.RuneCountInString(password); n < passwordMinLen || n > passwordMaxLen {
		v.add("password", "Password must be between 6 and 50 characters")
	}
}

// validateSignup returns the trimmed username.
func validateSignup(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	v := &ValidationError{}

	checkUsernameLength(v, username)
	if !usernamePattern.MatchString(username) {
		v.add("username", "Username can only contain letters, numbers, and underscores")
	}

	checkPasswordLength(v, password)
	if !hasPasswordMix(password) {
		v.add("password", "Password must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	if len(password) > bcryptMaxBytes {
		v.add("password", "Password must be at most 72 bytes")
	}

	return username, v.orNil()
}

func validateLogin(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	v := &ValidationError{}
	checkUsernameLength(v, username)
	checkPasswordLength(v, password)
	return username, v.orNil()
}

// hasPasswordMix only counts ASCII letters and digits.
func hasPasswordMix(password string) bool {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

func validateStatus(v *ValidationError, status *string) models.TaskStatus {
	if status == nil {
		return ""
	}
	s := models.TaskStatus(*status)
	if !s.IsValid() {
		v.add("status", "Status must be either pending or completed")
		return ""
	}
	return s
}

func validateDescription(v *ValidationError, description *string) string {
	if description == nil {
		return ""
	}
	d := strings.TrimSpace(*description)
	if utf8.RuneCountInString(d) > descriptionMaxLen {
		v.add("description", "Description must be at most 500 characters")
	}
	return d
}

func validateTitle(v *ValidationError, title string, message string) string {
	t := strings.TrimSpace(title)
	if n := utf8.RuneCountInString(t); n < 1 || n > titleMaxLen {
		v.add("title", message)
	}
	return t
}
