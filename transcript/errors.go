package transcript

import (
	"errors"

	"github.com/spachava753/msgquery/phone"
)

var (
	// ErrContactNotFound is returned when a contact matches no directory entry
	// and is not usable as a raw phone number or email address either.
	ErrContactNotFound = errors.New("contact not found")

	// ErrInvalidPhoneNumber is returned when a number fails parsing or
	// validation at any normalization point.
	ErrInvalidPhoneNumber = phone.ErrInvalidPhoneNumber

	// ErrStoreUnavailable is returned when the backing message store cannot be
	// reached. Providers wrap it from Check.
	ErrStoreUnavailable = errors.New("message store unavailable")

	// ErrInvalidDate is returned for start/end dates that are not ISO calendar
	// dates, or a start date after the end date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrMalformedTimestamp is returned when a provider hands back a message
	// whose date does not begin with YYYY-MM-DD.
	ErrMalformedTimestamp = errors.New("malformed message timestamp")
)
