// Package content defines the records contentaudit reads from the content
// platform and the [Source] contract it reads them through.
//
// # Records
//
//   - [Entry]: a content record whose fields hold locale-keyed values
//   - [Asset]: a media record with locale-keyed title and file metadata
//   - [ContentType]: the schema an entry is an instance of
//
// Entry fields keep the order the platform returned them in, because the
// display name of an entry is the first string-valued field.
//
// # Links
//
// A [Link] is the in-field value shape
//
//	{"sys": {"type": "Link", "linkType": "Entry", "id": "abc"}}
//
// found either directly as a locale value or as an element of an array value.
// [ParseLink] recognizes it and [Entry.Links] walks every field and locale.
// Values of any other shape are skipped, so a malformed entry never fails a
// scan.
//
// # Sources
//
// [Source] is split into [Reader] (listing and probes) and [Writer]
// (get, unpublish and delete). The HTTP implementation lives in
// [github.com/matzehuels/contentaudit/pkg/contentful]; [Memory] is an
// in-process implementation for tests and dry runs.
package content
