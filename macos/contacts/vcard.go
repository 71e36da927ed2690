package contacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-vcard"

	"github.com/spachava753/msgquery/directory"
)

// ImportVCard reads a vCard stream, as written by the Contacts app's
// "Export vCard", into a contact directory. Names follow the AddressBook
// rule ("Given Family" from N), falling back to FN. Cards that fail to parse
// are skipped. A failing read stops the import with that error.
func ImportVCard(ctx context.Context, r io.Reader) (*directory.Directory, error) {
	src := &readTracker{r: r}
	dec := vcard.NewDecoder(src)
	var b directory.Builder
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if src.err != nil {
			return nil, fmt.Errorf("contacts: read vcard: %w", src.err)
		}
		if err != nil {
			continue
		}

		name := cardName(card)
		if name == "" {
			continue
		}
		b.Add(name, "", "")
		for _, tel := range card.Values(vcard.FieldTelephone) {
			b.Add(name, tel, "")
		}
		for _, email := range card.Values(vcard.FieldEmail) {
			b.Add(name, "", email)
		}
	}
	return b.Directory(), nil
}

// ImportVCardFile is ImportVCard over the file at path.
func ImportVCardFile(ctx context.Context, path string) (*directory.Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		code := ErrorCodeNotFound
		if errors.Is(err, os.ErrPermission) {
			code = ErrorCodePermissionDenied
		}
		return nil, &Error{Code: code, Message: path, Err: err}
	}
	defer f.Close()
	return ImportVCard(ctx, f)
}

func cardName(card vcard.Card) string {
	if n := card.Name(); n != nil {
		if name := strings.TrimSpace(n.GivenName + " " + n.FamilyName); name != "" {
			return name
		}
	}
	return strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName))
}

// readTracker remembers the first non-EOF read error so that decode errors
// caused by the reader are told apart from malformed cards.
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}
