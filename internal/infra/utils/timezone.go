package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimezone = errors.New("invalid timezone")

// LoadTimezone resolves an IANA zone name. Empty and "Local" mean the host zone.
func LoadTimezone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "Local" {
		return time.Local, nil
	}

	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidTimezone, name, err)
	}
	return location, nil
}

// ValidateTimezone rejects empty names as well as unknown zones.
func ValidateTimezone(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTimezone)
	}
	_, err := LoadTimezone(name)
	return err
}

func IsValidTimezone(name string) bool {
	return ValidateTimezone(name) == nil
}
