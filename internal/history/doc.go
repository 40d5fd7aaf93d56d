// Package history records finished pipeline runs in a SQLite database.
//
// Each run gets one row keyed by its run id. The pipeline opens the row when a
// run starts and closes it with the final state, error, summary, clip count,
// and a JSON snapshot of the step list. The daemon prunes old rows on a
// schedule.
package history
