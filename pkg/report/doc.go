// Package report sequences report generation, selection and deletion.
//
// An [Orchestrator] owns the single result set a session works with. Only
// one report kind ([KindEntries], [KindMedia], [KindTypes]) holds items at
// a time: starting a report clears every item list and the selection.
// Every run carries a generation token, and results for anything but the
// latest generation are discarded, so a slow earlier run can never
// overwrite a newer one.
//
// A [View] filters the current items by display name and slices them into
// pages. A [Selection] is a set of ids that survives view changes; its
// page-scoped operations act on exactly the ids of the page being shown.
//
// A [Deleter] removes records one at a time, unpublishing published
// records first, and returns one [Outcome] per id so a failure never hides
// the rest of the batch.
package report
