// Spotify implementation of [Library] on top of github.com/zmb3/spotify/v2
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/shared"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL     = "https://accounts.spotify.com/authorize"
	spotifyTokenURL    = "https://accounts.spotify.com/api/token"
	defaultRedirectURI = "http://127.0.0.1:3000/callback"

	playlistPageSize = 50
	trackPageSize    = 100
)

// Scopes returns the OAuth scopes a sync needs. Playlist scopes are only requested when harvesting.
func Scopes(harvest bool) []string {
	scopes := []string{
		"user-follow-modify",
		"user-library-modify",
		"user-library-read",
	}
	if harvest {
		scopes = append(scopes, "playlist-read-private", "playlist-read-collaborative")
	}
	return scopes
}

// SpotifyService implements [Library] and [OAuthService] for the Spotify Web API.
//
// Uses [oauth2] for authentication; the [spotify.Client] is built without retries so a failed call ends the run.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	client         *spotify.Client
	baseURL        string
	onTokenRefresh func(*oauth2.Token)
}

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithScopes replaces the requested OAuth scopes.
func WithScopes(scopes ...string) SpotifyOption {
	return func(s *SpotifyService) { s.config.Scopes = scopes }
}

// WithBaseURL points the API client at another host. Used by tests.
func WithBaseURL(url string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = url }
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	s := &SpotifyService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes(false),
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate builds the API client from credentials.
//
// Expects either an "access_token" (with optional "refresh_token" and RFC 3339 "expiry") or an "auth_code" to exchange.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		cfg := shared.SpotifyConfig{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    credentials["token_type"],
			Expiry:       credentials["expiry"],
		}
		return s.OAuthenticate(ctx, cfg.Token())
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate builds the API client from an existing token. Refreshed tokens are passed to the refresh callback.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return fmt.Errorf("%w: empty token", shared.ErrMissingCredentials)
	}

	s.token = token
	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		callback: s.onTokenRefresh,
		last:     token.AccessToken,
	}
	s.client = s.newClient(oauth2.NewClient(ctx, source))
	return nil
}

func (s *SpotifyService) newClient(httpClient *http.Client) *spotify.Client {
	if s.baseURL != "" {
		return spotify.New(httpClient, spotify.WithBaseURL(s.baseURL))
	}
	return spotify.New(httpClient)
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration used for the authorization-code exchange.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers fn to receive every new token. Takes effect on the next [SpotifyService.OAuthenticate].
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

func (s *SpotifyService) api() (*spotify.Client, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return s.client, nil
}

// SearchArtist returns the first artist result for name. No result is not an error.
func (s *SpotifyService) SearchArtist(ctx context.Context, name string) (*models.Artist, error) {
	client, err := s.api()
	if err != nil {
		return nil, err
	}

	res, err := client.Search(ctx, name, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		return nil, wrapError("search artist", err)
	}
	if res.Artists == nil || len(res.Artists.Artists) == 0 {
		return nil, nil
	}

	a := res.Artists.Artists[0]
	return &models.Artist{ID: string(a.ID), Name: a.Name}, nil
}

// FollowArtists follows the given artists.
func (s *SpotifyService) FollowArtists(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := checkIDs(ids); err != nil {
		return err
	}
	client, err := s.api()
	if err != nil {
		return err
	}

	if err := client.FollowArtist(ctx, toIDs(ids)...); err != nil {
		return wrapError("follow artists", err)
	}
	return nil
}

// ArtistAlbums returns one page of the artist's full albums.
func (s *SpotifyService) ArtistAlbums(ctx context.Context, artistID string, limit int) ([]models.Album, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: artist id is empty", shared.ErrInvalidInput)
	}
	if limit <= 0 || limit > MaxAlbumPage {
		limit = MaxAlbumPage
	}
	client, err := s.api()
	if err != nil {
		return nil, err
	}

	page, err := client.GetArtistAlbums(ctx, spotify.ID(artistID), []spotify.AlbumType{spotify.AlbumTypeAlbum}, spotify.Limit(limit))
	if err != nil {
		return nil, wrapError("artist albums", err)
	}

	albums := make([]models.Album, 0, len(page.Albums))
	for _, a := range page.Albums {
		albums = append(albums, models.Album{
			ID:    string(a.ID),
			Name:  a.Name,
			Type:  a.AlbumType,
			Group: a.AlbumGroup,
		})
	}
	return albums, nil
}

// HasSavedAlbums checks which albums are already saved.
func (s *SpotifyService) HasSavedAlbums(ctx context.Context, ids ...string) ([]bool, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	client, err := s.api()
	if err != nil {
		return nil, err
	}

	saved, err := client.UserHasAlbums(ctx, toIDs(ids)...)
	if err != nil {
		return nil, wrapError("check saved albums", err)
	}
	if len(saved) != len(ids) {
		return nil, fmt.Errorf("%w: saved-album check returned %d results for %d ids", shared.ErrAPIRequest, len(saved), len(ids))
	}
	return saved, nil
}

// SaveAlbums adds the albums to the user's library.
func (s *SpotifyService) SaveAlbums(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := checkIDs(ids); err != nil {
		return err
	}
	client, err := s.api()
	if err != nil {
		return err
	}

	if err := client.AddAlbumsToLibrary(ctx, toIDs(ids)...); err != nil {
		return wrapError("save albums", err)
	}
	return nil
}

// Playlists iterates the playlists of userID, or of the current user when userID is empty.
func (s *SpotifyService) Playlists(userID string) *Iterator[models.Playlist] {
	return NewIterator(func(ctx context.Context, cursor string) ([]models.Playlist, string, error) {
		client, err := s.api()
		if err != nil {
			return nil, "", err
		}

		var page *spotify.SimplePlaylistPage
		switch {
		case cursor != "":
			page = &spotify.SimplePlaylistPage{}
			page.Next = cursor
			err = client.NextPage(ctx, page)
		case userID == "":
			page, err = client.CurrentUsersPlaylists(ctx, spotify.Limit(playlistPageSize))
		default:
			page, err = client.GetPlaylistsForUser(ctx, userID, spotify.Limit(playlistPageSize))
		}
		if err != nil {
			return nil, "", wrapError("list playlists", err)
		}

		playlists := make([]models.Playlist, 0, len(page.Playlists))
		for _, p := range page.Playlists {
			playlists = append(playlists, models.Playlist{
				ID:         string(p.ID),
				Name:       p.Name,
				OwnerID:    p.Owner.ID,
				TrackCount: int(p.Tracks.Total),
			})
		}
		return playlists, page.Next, nil
	})
}

// PlaylistTracks iterates the tracks of a playlist, skipping episodes and removed tracks.
func (s *SpotifyService) PlaylistTracks(playlistID string) *Iterator[models.Track] {
	return NewIterator(func(ctx context.Context, cursor string) ([]models.Track, string, error) {
		client, err := s.api()
		if err != nil {
			return nil, "", err
		}

		var page *spotify.PlaylistItemPage
		if cursor != "" {
			page = &spotify.PlaylistItemPage{}
			page.Next = cursor
			err = client.NextPage(ctx, page)
		} else {
			page, err = client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(trackPageSize))
		}
		if err != nil {
			return nil, "", wrapError("list playlist tracks", err)
		}

		tracks := make([]models.Track, 0, len(page.Items))
		for _, item := range page.Items {
			t := item.Track.Track
			if t == nil {
				continue
			}
			artists := make([]string, 0, len(t.Artists))
			for _, a := range t.Artists {
				artists = append(artists, a.Name)
			}
			tracks = append(tracks, models.Track{ID: string(t.ID), Name: t.Name, Artists: artists})
		}
		return tracks, page.Next, nil
	})
}

func checkIDs(ids []string) error {
	if len(ids) > MaxIDsPerRequest {
		return fmt.Errorf("%w: got %d, maximum is %d", shared.ErrTooManyIDs, len(ids), MaxIDsPerRequest)
	}
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty id", shared.ErrInvalidInput)
		}
	}
	return nil
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}

// wrapError maps Spotify API errors onto the shared error kinds.
func wrapError(op string, err error) error {
	status := 0
	var apiErr spotify.Error
	var apiErrPtr *spotify.Error
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Status
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Status
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: %v", shared.ErrTokenExpired, op, err)
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s: %v", shared.ErrServiceUnavailable, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
	}
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports every token that differs from the last one seen.
type refreshableTokenSource struct {
	mu       sync.Mutex
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}
