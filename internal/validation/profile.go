package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxBioLength      = 500
	maxNameLength     = 100
	maxPostTextLength = 500
	maxTagLength      = 100
)

// ValidateBio checks the profile bio length. Empty is allowed.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > maxBioLength {
		return fmt.Errorf("bio must not exceed %d characters", maxBioLength)
	}
	return nil
}

// ValidateName checks an optional name part (first or last name).
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("name must not exceed %d characters", maxNameLength)
	}
	return nil
}

// ValidateBirthDate checks the "YYYY-MM-DD" format. Empty is allowed.
func ValidateBirthDate(birthDate string) error {
	if birthDate == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", birthDate); err != nil {
		return fmt.Errorf("birth_date must be in YYYY-MM-DD format")
	}
	return nil
}

// ValidatePostText checks that a post body is present and within bounds.
func ValidatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	if utf8.RuneCountInString(text) > maxPostTextLength {
		return fmt.Errorf("text must not exceed %d characters", maxPostTextLength)
	}
	return nil
}

// ValidateTag checks a single tag label after trimming.
func ValidateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag must not be empty")
	}
	if utf8.RuneCountInString(tag) > maxTagLength {
		return fmt.Errorf("tag must not exceed %d characters", maxTagLength)
	}
	return nil
}
