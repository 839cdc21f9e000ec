package namespace

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"cirrus/internal/domain"
)

// validateFolderName trims name and checks it against the folder name rules
func (s *manager) validateFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)

	err := validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.RuneLength(1, s.limits.MaxFolderNameLength),
		validation.NotIn(".", "..").Error("folder name cannot be . or .."),
		validation.By(plainName),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return name, nil
}

func plainName(value interface{}) error {
	s, _ := value.(string)
	for _, r := range s {
		switch {
		case r == '/' || r == '\\':
			return errors.New("folder name cannot contain slashes")
		case unicode.IsControl(r):
			return errors.New("folder name cannot contain control characters")
		}
	}
	return nil
}

// sanitizeFileName applies SanitizeFilename and rejects names that end up empty
func (s *manager) sanitizeFileName(filename string) (string, error) {
	name := SanitizeFilename(filename, s.limits.MaxFileNameLength)
	if name == "" {
		return "", fmt.Errorf("%w: filename %q is empty after sanitization", domain.ErrValidation, filename)
	}
	return name, nil
}
