// Package audit finds unused content in a space.
//
// An [Auditor] answers three questions against a [content.Reader]:
//
//   - [Auditor.UnusedEntries]: entries nothing links to. The auditor pages
//     through every entry, builds a [refgraph.Graph] and classifies each
//     entry with [Classify].
//   - [Auditor.UnusedContentTypes]: content types with no entries, found
//     with one existence probe per type.
//   - [Auditor.UnusedAssets]: assets no entry links to, found with one
//     existence probe per asset.
//
// # Classification
//
// An entry is unused when it is not referenced and its content type id,
// lowercased, contains none of [Options.ExcludeSubstrings] (default
// "page"). Excluded types are treated as top-level content that is live
// by definition.
//
// With [ModeDirect] (the default) "referenced" means one hop: some entry
// links to it, even if that entry is itself unused. With [ModeReachable]
// an entry is referenced only when it can be reached by following links
// from an entry of an excluded type.
//
// # Probes
//
// Probes run through a bounded pool of [Options.Concurrency] workers
// (default 1, strictly sequential). A failed probe never marks its item
// unused; it is reported in the result's Failures instead.
package audit
