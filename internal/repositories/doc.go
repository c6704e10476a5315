// Package repositories implements SQLite persistence for the sync history ledger.
//
// Key Implementations:
//   - [RunRepository] : one row per sync invocation with status, counters and timestamps
//   - [RunArtistRepository] : per-artist outcomes of a run, in processing order
//   - [History] : opens a run, records each artist as the sync finishes it and closes the run
//
// Sequence numbers give runs a stable, human-readable order (run #1, #2, ...) independent of UUIDs.
// The [NextSequence] function atomically increments the counter kept in the runs_sequence table.
// Deleting a run removes its outcomes through the foreign key cascade.
package repositories
