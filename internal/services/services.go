// package services defines the remote library capability used by the sync
//
// Spotify (via github.com/zmb3/spotify/v2)
package services

import (
	"context"

	"github.com/desertthunder/tagsync/internal/models"
	"golang.org/x/oauth2"
)

// MaxIDsPerRequest is the largest number of ids a single follow, save, or contains call accepts.
const MaxIDsPerRequest = 20

// MaxAlbumPage is the largest page the artist albums endpoint returns.
const MaxAlbumPage = 50

// Library is the remote catalog and user library a sync reconciles against.
//
// It is constructed once at startup and passed to whatever needs remote access.
type Library interface {
	// SearchArtist returns the first catalog match for name, or nil when nothing matches.
	SearchArtist(ctx context.Context, name string) (*models.Artist, error)

	// FollowArtists follows up to [MaxIDsPerRequest] artists. Following an artist twice is harmless.
	FollowArtists(ctx context.Context, ids ...string) error

	// ArtistAlbums returns a single page of at most limit full albums by the artist.
	ArtistAlbums(ctx context.Context, artistID string, limit int) ([]models.Album, error)

	// HasSavedAlbums reports, in order, whether each album is already saved. At most [MaxIDsPerRequest] ids.
	HasSavedAlbums(ctx context.Context, ids ...string) ([]bool, error)

	// SaveAlbums adds up to [MaxIDsPerRequest] albums to the saved collection.
	SaveAlbums(ctx context.Context, ids ...string) error

	// Playlists iterates the playlists of userID, or of the current user when userID is empty.
	Playlists(userID string) *Iterator[models.Playlist]

	// PlaylistTracks iterates every track of a playlist.
	PlaylistTracks(playlistID string) *Iterator[models.Track]

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService is implemented by services that authorize through the authorization-code flow.
type OAuthService interface {
	GetAuthURL(state string) string
	GetOAuthConfig() *oauth2.Config
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
	SetTokenRefreshCallback(fn func(*oauth2.Token))
}
