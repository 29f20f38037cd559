package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// maxMinWait bounds the min_wait filter, in minutes.
const maxMinWait = 7 * 24 * 60

// ValidateAgentName validates an agent name taken from a path or query.
func ValidateAgentName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("agent name cannot be empty")
	}
	if len(name) > 256 {
		return errors.New("agent name exceeds maximum length")
	}
	if !utf8.ValidString(name) {
		return errors.New("agent name must be valid UTF-8")
	}
	return nil
}

// ParseMinWait parses a minimum wait in whole minutes. Empty means zero.
func ParseMinWait(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 0 {
		return 0, errors.New("min_wait must be a non-negative number of minutes")
	}
	if minutes > maxMinWait {
		return 0, errors.New("min_wait exceeds maximum")
	}
	return time.Duration(minutes) * time.Minute, nil
}

// ParseFlag parses an optional boolean query parameter. Empty means false.
func ParseFlag(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid boolean value: " + raw)
	}
	return b, nil
}
