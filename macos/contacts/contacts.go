package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/spachava753/msgquery/directory"
)

const (
	sourcesRelativePath = "Library/Application Support/AddressBook/Sources"
	addressBookFile     = "AddressBook-v22.abcddb"
)

// ErrorCode classifies exporter failures.
type ErrorCode string

const (
	// ErrorCodePermissionDenied indicates the process cannot read the
	// AddressBook directory, usually for lack of Full Disk Access.
	ErrorCodePermissionDenied ErrorCode = "permission_denied"
	// ErrorCodeNotFound indicates no AddressBook database exists.
	ErrorCodeNotFound ErrorCode = "not_found"
	// ErrorCodeStore indicates the database could not be opened or queried.
	ErrorCodeStore ErrorCode = "store"
)

// Error is a typed package error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "contacts: <nil>"
	}
	msg := fmt.Sprintf("contacts: %s", e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HasCode reports whether err is an *Error with code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// Row is one record/phone/email combination from the AddressBook join.
type Row struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// Name is the display name used as the directory key.
func (r Row) Name() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// userHomeDir is replaced in tests.
var userHomeDir = os.UserHomeDir

// SourcesDir returns ~/Library/Application Support/AddressBook/Sources.
func SourcesDir() (string, error) {
	home, err := userHomeDir()
	if err != nil {
		return "", &Error{Code: ErrorCodeNotFound, Message: "unable to resolve home directory", Err: err}
	}
	return filepath.Join(home, sourcesRelativePath), nil
}

// AddressBookPath returns the first AddressBook database found under
// SourcesDir, scanning source directories in name order.
func AddressBookPath() (string, error) {
	dir, err := SourcesDir()
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrPermission):
		return "", &Error{Code: ErrorCodePermissionDenied, Message: dir, Err: err}
	case err != nil:
		return "", &Error{Code: ErrorCodeNotFound, Message: dir, Err: err}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, entry.Name(), addressBookFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", &Error{Code: ErrorCodeNotFound, Message: fmt.Sprintf("no %s under %s", addressBookFile, dir)}
}

const rowsQuery = `
SELECT
	r.ZFIRSTNAME,
	r.ZLASTNAME,
	p.ZFULLNUMBER,
	e.ZADDRESS
FROM ZABCDRECORD r
LEFT JOIN ZABCDPHONENUMBER p ON p.ZOWNER = r.Z_PK
LEFT JOIN ZABCDEMAILADDRESS e ON e.ZOWNER = r.Z_PK
WHERE r.ZFIRSTNAME IS NOT NULL OR r.ZLASTNAME IS NOT NULL
ORDER BY r.Z_PK ASC, p.Z_PK ASC, e.Z_PK ASC;
`

// Rows reads the record/phone/email join from the AddressBook database at
// path. The database is opened read-only.
func Rows(ctx context.Context, path string) ([]Row, error) {
	if _, err := os.Stat(path); err != nil {
		code := ErrorCodeNotFound
		if errors.Is(err, os.ErrPermission) {
			code = ErrorCodePermissionDenied
		}
		return nil, &Error{Code: code, Message: path, Err: err}
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", strings.ReplaceAll(path, " ", "%20"))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &Error{Code: ErrorCodeStore, Message: "opening address book failed", Err: err}
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, rowsQuery)
	if err != nil {
		return nil, &Error{Code: ErrorCodeStore, Message: "address book query failed", Err: err}
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var first, last, phone, email sql.NullString
		if err := rows.Scan(&first, &last, &phone, &email); err != nil {
			return nil, &Error{Code: ErrorCodeStore, Message: "scanning address book row failed", Err: err}
		}
		out = append(out, Row{FirstName: first.String, LastName: last.String, Phone: phone.String, Email: email.String})
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Code: ErrorCodeStore, Message: "iterating address book rows failed", Err: err}
	}
	return out, nil
}

// Export reads the AddressBook database at path into a contact directory.
// An empty path means AddressBookPath.
func Export(ctx context.Context, path string) (*directory.Directory, error) {
	if path == "" {
		var err error
		if path, err = AddressBookPath(); err != nil {
			return nil, err
		}
	}

	rows, err := Rows(ctx, path)
	if err != nil {
		return nil, err
	}

	var b directory.Builder
	for _, row := range rows {
		b.Add(row.Name(), row.Phone, row.Email)
	}
	return b.Directory(), nil
}
