// Package services defines the [Library] capability the sync runs against and implements it for Spotify.
//
// # Library Interface
//
// [Library] covers exactly the remote calls a sync makes: artist search, follow, album listing,
// the saved-album existence check, album saves, and playlist and track enumeration.
// A single value is built at startup and handed to the sync engine and the playlist harvester.
//
// # Pagination
//
// Paginated collections are exposed as an [Iterator]. It yields one item at a time and fetches the
// next page only when the current one is exhausted; iteration ends when the continuation cursor is empty.
// [Library.Playlists] and [Library.PlaylistTracks] return a fresh iterator on every call.
//
// # Spotify Implementation
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2 over an [oauth2] client. Expired access tokens are
// refreshed by the token source and handed to the callback set with [SpotifyService.SetTokenRefreshCallback]
// so the caller can persist them. The client never retries: a failed call is returned to the caller.
//
// Batched endpoints (follow, save, contains) accept at most [MaxIDsPerRequest] ids per call.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : the API answered 401, reauthorization needed
//   - [shared.ErrServiceUnavailable] : rate limited or temporarily unavailable
//   - [shared.ErrTooManyIDs] : a batched call was given more than [MaxIDsPerRequest] ids
//   - [shared.ErrAPIRequest] : any other failed request
package services
