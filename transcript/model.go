package transcript

import (
	"context"
	"time"
)

// RawMessage is one message as reported by a Provider.
//
// Date is the provider's own rendering of the timestamp and must start with a
// YYYY-MM-DD calendar date. It is passed through to Record.Date unchanged.
type RawMessage struct {
	Text        *string
	Date        string
	IsFromMe    bool
	Attachments []AttachmentRef
}

// AttachmentRef describes one file attached to a RawMessage.
type AttachmentRef struct {
	MIMEType     *string
	Filename     *string
	OriginalPath *string
	IsMissing    bool
}

// Record is one shaped transcript message.
type Record struct {
	Text           string       `json:"text" jsonschema:"message text, empty when the message has none"`
	Date           string       `json:"date" jsonschema:"timestamp as stored by the message store"`
	IsFromMe       bool         `json:"is_from_me" jsonschema:"true when the local user sent the message"`
	HasAttachments bool         `json:"has_attachments"`
	Attachments    []Attachment `json:"attachments"`
}

// Attachment is the shaped form of an AttachmentRef.
type Attachment struct {
	MIMEType  *string `json:"mime_type"`
	Filename  *string `json:"filename"`
	FilePath  *string `json:"file_path"`
	IsMissing bool    `json:"is_missing"`
}

// Transcript is the result of one query.
type Transcript struct {
	Messages   []Record `json:"messages"`
	TotalCount int      `json:"total_count"`
}

// Query is the input to a transcript lookup. StartDate and EndDate are
// optional ISO calendar dates (2006-01-02).
type Query struct {
	Contact   string
	StartDate string
	EndDate   string
}

// Provider is a message history source keyed by one counterparty identifier.
type Provider interface {
	// Check reports whether the store is reachable. Failures wrap
	// ErrStoreUnavailable.
	Check() error
	// Messages returns the complete history with id, oldest first.
	Messages(ctx context.Context, id string) ([]RawMessage, error)
}

// Clock abstracts time.Now so the default window can be tested.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
