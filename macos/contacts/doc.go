// Package contacts exports the macOS AddressBook into a contact directory.
//
// The exporter reads the Contacts app's Core Data store directly
// (AddressBook-v22.abcddb under ~/Library/Application Support/AddressBook/Sources)
// through a read-only SQLite connection. Reading it requires Full Disk Access
// for the calling process.
//
// Each record contributes one directory entry named "First Last". Records with
// neither name part are skipped, phones keep their stored formatting, and
// emails are lower-cased. Entries that end up with no phone and no email are
// dropped.
//
//	d, err := contacts.Export(ctx, "")
//	if err != nil {
//		return err
//	}
//	return d.WriteFile("contacts_map.json")
//
// Failures are *Error values; use HasCode to branch on ErrorCodeNotFound,
// ErrorCodePermissionDenied, or ErrorCodeStore.
package contacts
