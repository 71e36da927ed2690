// Package directory holds the contact directory: an ordered mapping from
// display name to the phone numbers and email addresses known for that name.
//
// The on-disk form is the JSON document written by the contacts exporter:
//
//	{
//	  "Jane Doe": {"phones": ["+16502530000"], "emails": ["jane@example.com"]}
//	}
//
// [Parse] and [Directory.MarshalJSON] preserve key order, which is the order
// partial-name matching scans entries in.
package directory
