// Package contentful implements [content.Source] over the Contentful Content
// Management API.
//
// # Scope
//
// A [Client] is bound to one access token, one space and one environment:
//
//	client, err := contentful.NewClient(contentful.Config{
//	    Token:         os.Getenv("CONTENTFUL_MANAGEMENT_TOKEN"),
//	    SpaceID:       "abc123",
//	    EnvironmentID: "master",
//	})
//
// # Requests
//
// Collection endpoints are paged with skip/limit; [Client.ListContentTypes]
// and [Client.ListAssets] walk every page, while [Client.ListEntries] returns
// the single page the query asks for so callers control how far they scan.
//
// Unpublish and delete send the record's current version in the
// X-Contentful-Version header. A version mismatch surfaces as [ErrConflict].
//
// # Retries
//
// Reads are retried on network errors, 5xx and 429 responses. Writes are
// retried only on 429, which the platform returns before doing any work.
// Rate-limited retries wait for the X-Contentful-RateLimit-Reset interval.
//
// [content.Source]: github.com/matzehuels/contentaudit/pkg/content.Source
package contentful
