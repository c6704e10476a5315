// Package models defines domain entities and persistence interfaces for tagsync.
//
// The package contains two categories of types:
//
// 1. Value types describing local and remote data:
//   - [ArtistSet] : deduplicated, normalized artist names collected from tags or playlists
//   - [IgnoreList] : sentinel names ("unknown", "various artists") never admitted to a set
//   - [Artist], [Album], [Playlist], [Track] : catalog entries returned by the remote service
//   - [ArtistOutcome] : what one sync did for one artist
//
// 2. Persistent entities for the run history ledger:
//   - [SyncRun] : one sync invocation with status and totals
//   - [RunArtist] : an [ArtistOutcome] stored under its run
//
// Persistent entities implement the [Model] interface; [Repository] defines the CRUD surface.
package models
