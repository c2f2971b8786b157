package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
	maxLabels        = 50
	maxLabelLength   = 100
)

// NormalizeEmail is the uniqueness key for users.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateRegistration(email string, password string) error {
	if email == "" || password == "" {
		return invalidInput("email and password are required")
	}
	if !emailRegex.MatchString(email) {
		return invalidInput("invalid email")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return invalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return invalidInput(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

func ValidateLabels(labels []string) error {
	if len(labels) > maxLabels {
		return invalidInput(fmt.Sprintf("at most %d labels are allowed", maxLabels))
	}
	for _, l := range labels {
		if utf8.RuneCountInString(l) > maxLabelLength {
			return invalidInput(fmt.Sprintf("labels must be at most %d characters", maxLabelLength))
		}
	}
	return nil
}
