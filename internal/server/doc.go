// Package server runs the short-lived local HTTP server that completes the Spotify OAuth2 login.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first).
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the authorization code callback. It validates the state parameter, exchanges the
// code for tokens and sends exactly one [OAuthResult] through a channel. Later callbacks are rejected.
//
// # Callback Server
//
// [CallbackServer] binds the handler to the host and port of the configured redirect URI, waits for the
// result with a timeout and shuts itself down afterwards.
package server
