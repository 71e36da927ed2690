// Package transcript turns a contact reference into a date-bounded
// conversation transcript.
//
// The pipeline is:
//
//	Resolver.Resolve -> phone.Normalize -> Provider.Check -> Provider.Messages
//	-> ParseWindow -> Filter -> Shape
//
// [Service.ChatTranscript] runs it against the Messages store keyed by E.164
// phone numbers. [Service.EmailTranscript] runs the same filter and shaping
// over a mail provider keyed by email address.
//
// Error kinds are sentinel values matched with errors.Is:
// [ErrContactNotFound], [ErrInvalidPhoneNumber], [ErrStoreUnavailable],
// [ErrInvalidDate] and [ErrMalformedTimestamp]. A call either returns a full
// transcript or an error, never both.
package transcript
