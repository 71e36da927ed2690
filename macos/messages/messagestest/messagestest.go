// Package messagestest builds throwaway Messages databases with the subset of
// the chat.db schema that package messages reads.
package messagestest

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const appleReferenceUnix = int64(978307200)

const schema = `
CREATE TABLE handle (
	ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	service TEXT,
	uncanonicalized_id TEXT
);
CREATE TABLE chat (
	ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_identifier TEXT,
	service_name TEXT,
	display_name TEXT
);
CREATE TABLE chat_handle_join (chat_id INTEGER, handle_id INTEGER);
CREATE TABLE message (
	ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
	guid TEXT,
	text TEXT,
	attributedBody BLOB,
	handle_id INTEGER DEFAULT 0,
	date INTEGER,
	date_read INTEGER DEFAULT 0,
	is_from_me INTEGER DEFAULT 0,
	is_read INTEGER DEFAULT 0,
	is_empty INTEGER DEFAULT 0
);
CREATE TABLE chat_message_join (chat_id INTEGER, message_id INTEGER, message_date INTEGER);
CREATE TABLE attachment (
	ROWID INTEGER PRIMARY KEY AUTOINCREMENT,
	guid TEXT,
	filename TEXT,
	mime_type TEXT,
	transfer_name TEXT
);
CREATE TABLE message_attachment_join (message_id INTEGER, attachment_id INTEGER);
`

// Message is one row to insert. Handle and Chat are ROWIDs returned by
// AddHandle and AddChat; zero leaves them unset.
type Message struct {
	Handle         int64
	Chat           int64
	Text           *string
	AttributedBody []byte
	SentAt         time.Time
	// RawDate, when non-zero, is stored instead of SentAt.
	RawDate     int64
	FromMe      bool
	Empty       bool
	Attachments []Attachment
}

// Attachment is one attachment row.
type Attachment struct {
	MIMEType     *string
	TransferName *string
	Filename     *string
}

// DB is a writable fixture database.
type DB struct {
	tb    testing.TB
	db    *sql.DB
	count int
}

// Create makes a new database at path and closes it when the test ends.
func Create(tb testing.TB, path string) *DB {
	tb.Helper()
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=rwc")
	if err != nil {
		tb.Fatalf("messagestest: open %s: %v", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		tb.Fatalf("messagestest: create schema: %v", err)
	}
	tb.Cleanup(func() { db.Close() })
	return &DB{tb: tb, db: db}
}

// AddHandle inserts a handle and returns its ROWID.
func (d *DB) AddHandle(id string) int64 {
	d.tb.Helper()
	return d.insert(`INSERT INTO handle (id, service, uncanonicalized_id) VALUES (?, 'iMessage', ?)`, id, id)
}

// AddChat inserts a chat with the given members and returns its ROWID. One
// handle makes a one-to-one chat; more make a group chat.
func (d *DB) AddChat(identifier string, handles ...int64) int64 {
	d.tb.Helper()
	chat := d.insert(`INSERT INTO chat (chat_identifier, service_name, display_name) VALUES (?, 'iMessage', '')`, identifier)
	for _, h := range handles {
		d.insert(`INSERT INTO chat_handle_join (chat_id, handle_id) VALUES (?, ?)`, chat, h)
	}
	return chat
}

// AddMessage inserts msg with its attachments and returns the message ROWID.
func (d *DB) AddMessage(msg Message) int64 {
	d.tb.Helper()
	d.count++
	date := msg.RawDate
	if date == 0 {
		date = AppleDate(msg.SentAt)
	}
	id := d.insert(`
INSERT INTO message (guid, text, attributedBody, handle_id, date, is_from_me, is_empty)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fmt.Sprintf("guid-%d", d.count), msg.Text, msg.AttributedBody, msg.Handle, date, boolInt(msg.FromMe), boolInt(msg.Empty))
	if msg.Chat != 0 {
		d.insert(`INSERT INTO chat_message_join (chat_id, message_id, message_date) VALUES (?, ?, ?)`, msg.Chat, id, date)
	}
	for i, att := range msg.Attachments {
		attID := d.insert(`INSERT INTO attachment (guid, filename, mime_type, transfer_name) VALUES (?, ?, ?, ?)`,
			fmt.Sprintf("att-%d-%d", d.count, i), att.Filename, att.MIMEType, att.TransferName)
		d.insert(`INSERT INTO message_attachment_join (message_id, attachment_id) VALUES (?, ?)`, id, attID)
	}
	return id
}

// AppleDate encodes t the way current macOS releases store message.date.
func AppleDate(t time.Time) int64 {
	return (t.Unix()-appleReferenceUnix)*int64(time.Second) + int64(t.Nanosecond())
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

func (d *DB) insert(query string, args ...any) int64 {
	d.tb.Helper()
	res, err := d.db.Exec(query, args...)
	if err != nil {
		d.tb.Fatalf("messagestest: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		d.tb.Fatalf("messagestest: last insert id: %v", err)
	}
	return id
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
