// Package validation contains input validation helpers for the API surface.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	maxNameLen     = 200
	maxLocationLen = 200
	maxNotesLen    = 2000
)

// ValidateEmail validates basic email shape.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidateFoodName validates the item name.
func ValidateFoodName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("name too long (max %d characters)", maxNameLen)
	}
	return nil
}

// ValidateQuantity validates that quantity is a positive integer.
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be a positive integer")
	}
	return nil
}

// ValidatePickupLocation validates the pickup location.
func ValidatePickupLocation(location string) error {
	if strings.TrimSpace(location) == "" {
		return fmt.Errorf("pickup location is required")
	}
	if len(location) > maxLocationLen {
		return fmt.Errorf("pickup location too long (max %d characters)", maxLocationLen)
	}
	return nil
}

// ValidateNotes validates free-text notes.
func ValidateNotes(notes string) error {
	if len(notes) > maxNotesLen {
		return fmt.Errorf("notes too long (max %d characters)", maxNotesLen)
	}
	return nil
}

// ParseExpiry parses an RFC 3339 expiry timestamp and rejects dates in the past.
// The reference frontend sends full timestamps; date-only values are accepted too.
func ParseExpiry(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("expiry date is required")
	}

	expiry, err := time.Parse(time.RFC3339, value)
	if err != nil {
		expiry, err = time.Parse("2006-01-02", value)
		if err != nil {
			return time.Time{}, fmt.Errorf("expiry date must be RFC 3339 or YYYY-MM-DD")
		}
		// A date-only expiry means "good through that day".
		expiry = expiry.Add(24*time.Hour - time.Nanosecond)
	}

	if expiry.Before(now) {
		return time.Time{}, fmt.Errorf("expiry date must not be in the past")
	}
	return expiry, nil
}
