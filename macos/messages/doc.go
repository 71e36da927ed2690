// Package messages reads conversation history from the macOS Messages
// database (~/Library/Messages/chat.db) for transcript queries.
//
// A [Store] is constructed once per process and implements
// transcript.Provider:
//
//  1. Check()
//     Confirms chat.db exists at the resolved path. Run before every query.
//  2. Messages(ctx, handle)
//     Returns the full one-to-one history with a handle (an E.164 number
//     such as "+16502530000"), oldest first, with attachments.
//
// Path resolution
//
//   - Options.Path when set.
//   - Otherwise $SQLITE_DB_PATH.
//   - Otherwise ~/Library/Messages/chat.db.
//
// Operational notes
//
//   - The database is opened read-only (mode=ro); nothing is ever written.
//   - message.date is read as nanoseconds since 2001-01-01 UTC, or seconds on
//     databases written by older macOS releases, and rendered as
//     "2006-01-02 15:04:05" in the store's location.
//   - When message.text is NULL the text is recovered from attributedBody.
//   - Reading chat.db requires Full Disk Access for the calling process.
//   - SQLite access uses github.com/mattn/go-sqlite3 (CGO required).
package messages
