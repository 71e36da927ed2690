package directory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrLoad is returned when a directory file exists but cannot be read or parsed.
var ErrLoad = errors.New("directory: load failed")

// Entry is one contact with every phone number and email address known for it.
//
// Phones keep discovery order; Emails are lower-cased. Both are deduplicated
// when built through [Builder].
type Entry struct {
	Name   string
	Phones []string
	Emails []string
}

// Directory is an immutable, ordered display-name index.
//
// Iteration order is the order entries were added (for a parsed file, the key
// order of the JSON document). A nil *Directory behaves as an empty directory.
type Directory struct {
	entries []Entry
	index   map[string]int
}

// New builds a Directory from entries. A repeated name replaces the earlier
// entry's phones and emails but keeps its original position.
func New(entries []Entry) *Directory {
	d := &Directory{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, entry := range entries {
		entry = Entry{
			Name:   entry.Name,
			Phones: append([]string(nil), entry.Phones...),
			Emails: append([]string(nil), entry.Emails...),
		}
		if i, ok := d.index[entry.Name]; ok {
			d.entries[i] = entry
			continue
		}
		d.index[entry.Name] = len(d.entries)
		d.entries = append(d.entries, entry)
	}
	return d
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Lookup returns the entry stored under exactly name.
func (d *Directory) Lookup(name string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	i, ok := d.index[name]
	if !ok {
		return Entry{}, false
	}
	return d.entries[i], true
}

// Entries returns the entries in stored order. Callers must not modify the
// returned phone and email slices.
func (d *Directory) Entries() []Entry {
	if d == nil {
		return nil
	}
	return append([]Entry(nil), d.entries...)
}

type wireEntry struct {
	Phones []string `json:"phones"`
	Emails []string `json:"emails"`
}

// Parse decodes a directory document of the form
// {"Name": {"phones": [...], "emails": [...]}, ...} keeping key order.
func Parse(data []byte) (*Directory, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("directory: reading document start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("directory: document must be a JSON object, got %v", tok)
	}

	entries := make([]Entry, 0, 64)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("directory: reading contact name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("directory: unexpected token %v", tok)
		}
		var wire wireEntry
		if err := dec.Decode(&wire); err != nil {
			return nil, fmt.Errorf("directory: decoding contact %q: %w", name, err)
		}
		entries = append(entries, Entry{Name: name, Phones: wire.Phones, Emails: wire.Emails})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("directory: reading document end: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("directory: trailing data after document")
	}
	return New(entries), nil
}

// Load reads and parses the directory file at path. A missing file is reported
// with an error wrapping [os.ErrNotExist]; any other failure wraps [ErrLoad].
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("directory: %s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}
	return d, nil
}

// MarshalJSON encodes the directory as an ordered JSON object. Non-ASCII and
// HTML characters are written unescaped.
func (d *Directory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, entry := range d.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(entry.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		wire := wireEntry{Phones: entry.Phones, Emails: entry.Emails}
		if wire.Phones == nil {
			wire.Phones = []string{}
		}
		if wire.Emails == nil {
			wire.Emails = []string{}
		}
		if err := enc.Encode(wire); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteFile writes the directory to path as indented JSON.
func (d *Directory) WriteFile(path string) error {
	raw, err := d.MarshalJSON()
	if err != nil {
		return fmt.Errorf("directory: encoding: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("directory: formatting: %w", err)
	}
	out.WriteByte('\n')
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("directory: writing %s: %w", path, err)
	}
	return nil
}

// Builder accumulates contact rows into a Directory the way an address book
// export discovers them: one (name, phone, email) row at a time.
type Builder struct {
	entries []Entry
	index   map[string]int
}

// Add records a row. Blank names are ignored; blank phones or emails are
// skipped; duplicates are dropped. Emails are lower-cased.
func (b *Builder) Add(name string, phone string, email string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if b.index == nil {
		b.index = map[string]int{}
	}
	i, ok := b.index[name]
	if !ok {
		i = len(b.entries)
		b.index[name] = i
		b.entries = append(b.entries, Entry{Name: name, Phones: []string{}, Emails: []string{}})
	}

	entry := &b.entries[i]
	if phone = strings.TrimSpace(phone); phone != "" && !contains(entry.Phones, phone) {
		entry.Phones = append(entry.Phones, phone)
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" && !contains(entry.Emails, email) {
		entry.Emails = append(entry.Emails, email)
	}
}

// Directory returns the accumulated entries, dropping those with neither a
// phone nor an email.
func (b *Builder) Directory() *Directory {
	kept := make([]Entry, 0, len(b.entries))
	for _, entry := range b.entries {
		if len(entry.Phones) == 0 && len(entry.Emails) == 0 {
			continue
		}
		kept = append(kept, entry)
	}
	return New(kept)
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
