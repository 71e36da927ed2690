// Package msgquery is the index for the transcript query packages in this
// module.
//
// This root package is documentation-only. Import specific subpackages:
//   - github.com/spachava753/msgquery/directory
//     Ordered contacts map (name -> phones, emails) and its reloadable source.
//   - github.com/spachava753/msgquery/phone
//     Phone number validation and E.164 normalization.
//   - github.com/spachava753/msgquery/transcript
//     Contact resolution, date windows, and transcript assembly.
//   - github.com/spachava753/msgquery/macos/messages
//     Read-only access to the Messages chat.db.
//   - github.com/spachava753/msgquery/macos/contacts
//     AddressBook export into a contacts map.
//   - github.com/spachava753/msgquery/gmail
//     Read-only Gmail history for email transcripts.
//   - github.com/spachava753/msgquery/mcpserver
//     MCP tools over stdio.
//
// The msgquery command in cmd/msgquery wires these together.
package msgquery
