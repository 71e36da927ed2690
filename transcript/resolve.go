package transcript

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/spachava753/msgquery/directory"
	"github.com/spachava753/msgquery/phone"
)

// MatchKind records which resolution step produced an identifier.
type MatchKind string

const (
	// MatchExact is an exact directory name match.
	MatchExact MatchKind = "exact"
	// MatchPartial is a case-insensitive substring match on a directory name.
	MatchPartial MatchKind = "partial"
	// MatchRaw means the input itself was a usable phone number or address.
	MatchRaw MatchKind = "raw"
)

// Resolution is the outcome of resolving a contact string.
//
// For directory matches Value is the first phone (or email) exactly as stored;
// for raw matches it is already normalized.
type Resolution struct {
	Value string
	Name  string
	Kind  MatchKind
}

// Resolver maps user-supplied contact strings onto directory identifiers.
type Resolver struct {
	contacts *directory.Source
	region   string
}

// NewResolver returns a Resolver over contacts. region is the fallback region
// for raw phone numbers; empty means phone.DefaultRegion.
func NewResolver(contacts *directory.Source, region string) *Resolver {
	if contacts == nil {
		contacts = directory.Fixed(nil)
	}
	if strings.TrimSpace(region) == "" {
		region = phone.DefaultRegion
	}
	return &Resolver{contacts: contacts, region: region}
}

// Resolve returns the phone identifier for contact: the first phone of an
// exact name match, else of the first partial name match in directory order,
// else contact itself normalized as a phone number. The exact step tries
// contact verbatim and then with surrounding whitespace trimmed; the later
// steps use the trimmed form.
func (r *Resolver) Resolve(contact string) (string, error) {
	res, err := r.ResolvePhone(contact)
	if err != nil {
		return "", err
	}
	return res.Value, nil
}

// ResolvePhone is Resolve with match details.
func (r *Resolver) ResolvePhone(contact string) (Resolution, error) {
	query := strings.TrimSpace(contact)
	if query == "" {
		return Resolution{}, fmt.Errorf("%w: contact is required", ErrContactNotFound)
	}

	if res, ok := lookup(r.contacts.Directory(), contact, query, phonesOf); ok {
		return res, nil
	}

	normalized, err := phone.Normalize(query, r.region)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %q is not in the contacts directory and is not a valid phone number", ErrContactNotFound, contact)
	}
	return Resolution{Value: normalized, Kind: MatchRaw}, nil
}

// ResolveEmail applies the same directory policy to email addresses, falling
// back to parsing contact as an address. The result is lower-cased.
func (r *Resolver) ResolveEmail(contact string) (Resolution, error) {
	query := strings.TrimSpace(contact)
	if query == "" {
		return Resolution{}, fmt.Errorf("%w: contact is required", ErrContactNotFound)
	}

	if res, ok := lookup(r.contacts.Directory(), contact, query, emailsOf); ok {
		res.Value = strings.ToLower(strings.TrimSpace(res.Value))
		return res, nil
	}

	addr, err := mail.ParseAddress(query)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %q is not in the contacts directory and is not an email address", ErrContactNotFound, contact)
	}
	return Resolution{Value: strings.ToLower(addr.Address), Name: addr.Name, Kind: MatchRaw}, nil
}

func phonesOf(entry directory.Entry) []string {
	return entry.Phones
}

func emailsOf(entry directory.Entry) []string {
	return entry.Emails
}

// lookup scans d for raw, then query (raw trimmed). Entries without any value
// for pick are skipped so a name-only match never shadows a later usable one.
func lookup(d *directory.Directory, raw string, query string, pick func(directory.Entry) []string) (Resolution, bool) {
	for _, key := range []string{raw, query} {
		if entry, ok := d.Lookup(key); ok {
			if values := pick(entry); len(values) > 0 {
				return Resolution{Value: values[0], Name: entry.Name, Kind: MatchExact}, true
			}
		}
	}

	needle := strings.ToLower(query)
	for _, entry := range d.Entries() {
		values := pick(entry)
		if len(values) == 0 {
			continue
		}
		if strings.Contains(strings.ToLower(entry.Name), needle) {
			return Resolution{Value: values[0], Name: entry.Name, Kind: MatchPartial}, true
		}
	}
	return Resolution{}, false
}
