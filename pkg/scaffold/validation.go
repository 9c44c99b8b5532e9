package scaffold

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrInvalidProjectName is returned for names that break the naming rules.
	ErrInvalidProjectName = errors.New("invalid project name")
)

// ValidateProjectName checks that a name is usable as a project identifier:
// no spaces, no leading digit, and only alphanumerics, underscores, and
// hyphens.
func ValidateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidProjectName)
	}
	if strings.ContainsRune(name, ' ') {
		return fmt.Errorf("%w: project names cannot contain spaces", ErrInvalidProjectName)
	}

	runes := []rune(name)
	if unicode.IsDigit(runes[0]) {
		return fmt.Errorf("%w: project names cannot start with a number", ErrInvalidProjectName)
	}

	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return fmt.Errorf("%w: only alphanumeric characters, underscores, and hyphens are allowed", ErrInvalidProjectName)
		}
	}
	return nil
}
