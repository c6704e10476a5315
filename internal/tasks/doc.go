// Package tasks reconciles a Spotify library with a set of local artist names.
//
// # Core Operations
//
//  1. [LibrarySync.SyncArtists] : follow artists and save their missing albums
//     - Resolves each name with a catalog search, taking the first result only
//     - A name without a match is skipped silently
//     - Follows the artist without checking first; following is idempotent
//     - Lists one page of the artist's releases and keeps full albums only
//     - Checks which albums are already saved and saves the rest in bounded batches
//     - Pauses for a fixed delay after each artist; an optional rate limiter caps remote calls per second
//     - A dry run follows and saves nothing and reports what it would add as AlbumsMissing
//
//  2. [LibrarySync.HarvestPlaylistArtists] : collect artists from existing playlists
//     - Iterates the user's playlists, then each playlist's tracks, page by page
//     - Skips playlists owned by generated accounts such as "spotify"
//     - Read only; the result is unioned into the set passed to SyncArtists
//
// # Progress Reporting
//
// Both operations send [ProgressUpdate] values on an optional channel. Sends never block; updates are
// dropped when the channel is full.
//
// # History
//
// The optional [Recorder] receives each [models.ArtistOutcome] as soon as the artist is done.
// Recording errors are logged and ignored so the ledger never disturbs a sync.
//
// # Failure
//
// Any remote error ends the run. The partial [SyncResult] is returned with the error; artists already
// followed and albums already saved stay that way.
package tasks
