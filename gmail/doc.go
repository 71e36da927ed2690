// Package gmail reads the mail exchanged with one correspondent from a Gmail
// account, for email transcripts.
//
// # Authentication
//
// Runtime credentials are read from Options or, when empty, from environment
// variables:
//
//   - GMAIL_ADDRESS
//   - GMAIL_APP_PASSWORD
//
// The password must be a Gmail app password; spaces are stripped. The store
// authenticates over IMAPS with SASL PLAIN.
//
// # Read-only
//
// Store selects "[Gmail]/All Mail" read-only and fetches with BODY.PEEK, so
// querying never marks mail as seen or changes labels.
//
// # Mapping
//
// Each message becomes one transcript entry:
//
//   - text: the plain-text body (all text/plain parts joined), else the subject.
//   - date: the envelope date, or the internal date when absent, rendered with
//     DateLayout in the store's location.
//   - is_from_me: the sender is the account address.
//   - attachments: body-structure parts with a filename or an attachment
//     disposition. They are never on local disk, so file_path is null.
//
// Example:
//
//	store := gmail.NewStore(gmail.Options{})
//	if err := store.Check(); err != nil {
//		return err
//	}
//	msgs, err := store.Messages(ctx, "jane@example.com")
package gmail
