package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/itchan-dev/anonboard/shared/errors"
)

const (
	MaxTextRunes     = 10_000
	MaxPasswordBytes = 72 // bcrypt ignores everything past 72 bytes
)

var boardNameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// BoardValidator checks user input before it reaches storage
type BoardValidator struct{}

func New() *BoardValidator {
	return &BoardValidator{}
}

func (v *BoardValidator) BoardName(name string) error {
	if !boardNameRegex.MatchString(name) {
		return errors.BadRequest("Board name should be 1-32 letters, digits, '-' or '_'")
	}
	return nil
}

func (v *BoardValidator) Text(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.BadRequest("Text is too short")
	}
	if utf8.RuneCountInString(text) > MaxTextRunes {
		return errors.BadRequest("Text is too long")
	}
	return nil
}

func (v *BoardValidator) Password(password string) error {
	if len(password) == 0 {
		return errors.BadRequest("Password is required")
	}
	if len(password) > MaxPasswordBytes {
		return errors.BadRequest("Password is too long")
	}
	return nil
}
