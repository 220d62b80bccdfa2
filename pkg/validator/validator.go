package validator

import (
	"fmt"
	"regexp"
)

const (
	minEmailLength    = 3
	maxEmailLength    = 255
	minPasswordLength = 8
	maxPasswordLength = 72
	maxDisplayNameLen = 255
	asciiControlStart = 32
	asciiDelete       = 127

	errEmailEmptyFmt            = "email cannot be empty"
	errEmailLengthFmt           = "email must be between %d and %d characters"
	errEmailInvalidFmt          = "invalid email format"
	errPasswordMinLengthFmt     = "password must be at least %d characters"
	errPasswordMaxLengthFmt     = "password must not exceed %d characters"
	errDisplayNameMaxLengthFmt  = "name must not exceed %d characters"
	errDisplayNameControlFmt    = "name cannot contain control characters"
	errIdentifierEmptyFmt       = "%s cannot be empty"
	errIdentifierInvalidCharFmt = "%s may only contain lowercase letters, digits and underscores"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	identifierRegex = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func Email(email string) error {
	if email == "" {
		return fmt.Errorf(errEmailEmptyFmt)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf(errEmailInvalidFmt)
	}

	return nil
}

func Password(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf(errPasswordMinLengthFmt, minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return fmt.Errorf(errPasswordMaxLengthFmt, maxPasswordLength)
	}

	return nil
}

// DisplayName allows empty names.
func DisplayName(name string) error {
	if len(name) > maxDisplayNameLen {
		return fmt.Errorf(errDisplayNameMaxLengthFmt, maxDisplayNameLen)
	}

	for _, char := range name {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errDisplayNameControlFmt)
		}
	}

	return nil
}

// Identifier checks role and permission names submitted by clients before
// they are looked up in the catalogue.
func Identifier(kind, value string) error {
	if value == "" {
		return fmt.Errorf(errIdentifierEmptyFmt, kind)
	}
	if !identifierRegex.MatchString(value) {
		return fmt.Errorf(errIdentifierInvalidCharFmt, kind)
	}
	return nil
}
