// Package phone canonicalizes phone numbers to E.164.
//
// Directory numbers and numbers typed by a user go through the same
// [Normalize] call so both converge on one key for the message store.
package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when a caller passes an empty region.
const DefaultRegion = "US"

// ErrInvalidPhoneNumber is returned when a number is malformed or is not an
// assignable number for its region.
var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// Normalize parses raw with region as the fallback region for numbers without
// a country code, validates it, and formats it as E.164 (for example
// "+16502530000").
func Normalize(raw string, region string) (string, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidPhoneNumber)
	}

	num, err := phonenumbers.Parse(trimmed, region)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidPhoneNumber, raw, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("%w %q: not a valid number", ErrInvalidPhoneNumber, raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Valid reports whether raw normalizes successfully.
func Valid(raw string, region string) bool {
	_, err := Normalize(raw, region)
	return err == nil
}
