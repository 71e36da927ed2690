package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/spachava753/msgquery/transcript"
)

const (
	messagesDBRelativePath = "Library/Messages/chat.db"
	appleReferenceUnix     = int64(978307200) // 2001-01-01T00:00:00Z

	// EnvDBPath overrides the chat database location.
	EnvDBPath = "SQLITE_DB_PATH"

	// DateLayout is how message timestamps are rendered in RawMessage.Date.
	DateLayout = "2006-01-02 15:04:05"

	// Stored dates above this are nanoseconds since the Apple epoch; older
	// databases store whole seconds.
	appleNanosThreshold = int64(100_000_000_000)
)

// ErrStoreUnavailable is returned by [Store.Check] when chat.db is missing.
var ErrStoreUnavailable = transcript.ErrStoreUnavailable

// Options configures a Store.
type Options struct {
	// Path is the chat database path. Empty means [DefaultPath].
	Path string
	// Location is the zone used to render message dates; nil means time.Local.
	Location *time.Location
	Logger   *zap.Logger
}

// Store reads one-to-one conversation history from a Messages chat.db.
//
// The database is opened read-only on first use and kept open until Close.
// Store is safe for concurrent use.
type Store struct {
	path   string
	loc    *time.Location
	logger *zap.Logger

	mu sync.Mutex
	db *sql.DB
}

// DefaultPath returns $SQLITE_DB_PATH when set, else ~/Library/Messages/chat.db.
func DefaultPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv(EnvDBPath)); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("messages: unable to resolve home directory: %w", err)
	}
	return filepath.Join(home, messagesDBRelativePath), nil
}

// NewStore returns a Store for opts. It does not touch the database.
func NewStore(opts Options) (*Store, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{path: path, loc: opts.Location, logger: opts.Logger}, nil
}

// Path returns the chat database path.
func (s *Store) Path() string {
	return s.path
}

// Check verifies chat.db exists. It is cheap and meant to run before every
// query.
func (s *Store) Check() error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("%w: messages database not found at %s: %v", ErrStoreUnavailable, s.path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: messages database path %s is a directory", ErrStoreUnavailable, s.path)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// matchesCounterparty restricts message m to the one-to-one conversation with
// handle ?1: messages in the chat identified by ?1, plus messages sent from
// that handle that belong to no group chat.
const matchesCounterparty = `
COALESCE(m.is_empty, 0) = 0
AND (
	m.ROWID IN (
		SELECT cmj.message_id
		FROM chat_message_join cmj
		JOIN chat c ON c.ROWID = cmj.chat_id
		WHERE c.chat_identifier = ?1
	)
	OR (
		h.id = ?1
		AND NOT EXISTS (
			SELECT 1
			FROM chat_message_join cmj
			WHERE cmj.message_id = m.ROWID
			AND cmj.chat_id IN (
				SELECT chat_id FROM chat_handle_join GROUP BY chat_id HAVING COUNT(*) > 1
			)
		)
	)
)`

// Messages returns every message exchanged with handle id, oldest first.
func (s *Store) Messages(ctx context.Context, id string) ([]transcript.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("messages: handle is required")
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}

	type row struct {
		rowID    int64
		text     sql.NullString
		body     []byte
		date     int64
		isFromMe int64
	}

	rows := make([]row, 0, 256)
	err = runQuery(ctx, db, `
SELECT
	m.ROWID,
	m.text,
	m.attributedBody,
	COALESCE(m.date, 0),
	COALESCE(m.is_from_me, 0)
FROM message m
LEFT JOIN handle h ON h.ROWID = m.handle_id
WHERE `+matchesCounterparty+`
ORDER BY m.date ASC, m.ROWID ASC;
`, []any{id}, func(rs *sql.Rows) error {
		var r row
		if err := rs.Scan(&r.rowID, &r.text, &r.body, &r.date, &r.isFromMe); err != nil {
			return err
		}
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	attachments, err := s.attachments(ctx, db, id)
	if err != nil {
		return nil, err
	}

	out := make([]transcript.RawMessage, 0, len(rows))
	for _, r := range rows {
		msg := transcript.RawMessage{
			Date:        appleTimestamp(r.date).In(s.loc).Format(DateLayout),
			IsFromMe:    r.isFromMe != 0,
			Attachments: attachments[r.rowID],
		}
		switch {
		case r.text.Valid:
			text := r.text.String
			msg.Text = &text
		case len(r.body) > 0:
			if text, ok := textFromAttributedBody(r.body); ok {
				msg.Text = &text
			}
		}
		out = append(out, msg)
	}

	s.logger.Debug("loaded messages", zap.String("handle", id), zap.Int("messages", len(out)))
	return out, nil
}

func (s *Store) attachments(ctx context.Context, db *sql.DB, id string) (map[int64][]transcript.AttachmentRef, error) {
	byMessage := map[int64][]transcript.AttachmentRef{}
	err := runQuery(ctx, db, `
SELECT
	maj.message_id,
	a.mime_type,
	a.transfer_name,
	a.filename
FROM message_attachment_join maj
JOIN attachment a ON a.ROWID = maj.attachment_id
WHERE maj.message_id IN (
	SELECT m.ROWID
	FROM message m
	LEFT JOIN handle h ON h.ROWID = m.handle_id
	WHERE `+matchesCounterparty+`
)
ORDER BY maj.message_id ASC, a.ROWID ASC;
`, []any{id}, func(rs *sql.Rows) error {
		var (
			messageID int64
			mimeType  sql.NullString
			name      sql.NullString
			path      sql.NullString
		)
		if err := rs.Scan(&messageID, &mimeType, &name, &path); err != nil {
			return err
		}
		ref := transcript.AttachmentRef{
			MIMEType:     nullableString(mimeType),
			Filename:     nullableString(name),
			OriginalPath: nullableString(path),
		}
		if ref.OriginalPath != nil {
			ref.IsMissing = !fileExists(expandHome(*ref.OriginalPath))
		}
		byMessage[messageID] = append(byMessage[messageID], ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return byMessage, nil
}

func (s *Store) open() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}
	db, err := openMessagesDB(s.path, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("opened messages database", zap.String("path", s.path))
	s.db = db
	return db, nil
}

func runQuery(ctx context.Context, db *sql.DB, query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("messages: sqlite query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("messages: scanning sqlite row failed: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("messages: iterating sqlite rows failed: %w", err)
	}
	return nil
}

func openMessagesDB(dbPath string, readOnly bool) (*sql.DB, error) {
	mode := "rw"
	if readOnly {
		mode = "ro"
	}

	dsn := fmt.Sprintf("file:%s?mode=%s&_busy_timeout=5000", strings.ReplaceAll(dbPath, " ", "%20"), mode)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("messages: opening sqlite database failed: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("messages: connecting to sqlite database failed: %w", err)
	}
	return db, nil
}

// appleTimestamp converts a chat.db date column to time.
func appleTimestamp(raw int64) time.Time {
	if raw <= 0 {
		return time.Unix(appleReferenceUnix, 0).UTC()
	}
	if raw < appleNanosThreshold {
		return time.Unix(appleReferenceUnix+raw, 0).UTC()
	}
	sec := raw / int64(time.Second)
	nsec := raw % int64(time.Second)
	return time.Unix(appleReferenceUnix+sec, nsec).UTC()
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
