package testing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/services"
	"github.com/desertthunder/tagsync/internal/shared"
)

// FakeLibrary is an in-memory [services.Library].
//
// Saving an album marks it saved, so a second sync over the same data sees it as owned.
// Errors keyed by operation ("search", "follow", "albums", "contains", "save", "playlists", "tracks")
// are returned from the matching call.
type FakeLibrary struct {
	mu sync.Mutex

	Catalog map[string]models.Artist    // normalized name -> first search result
	Albums  map[string][]models.Album   // artist id -> releases
	Saved   map[string]bool             // album id -> saved
	Pages   [][]models.Playlist         // playlist pages
	Tracks  map[string][][]models.Track // playlist id -> track pages
	Errors  map[string]error

	Searches        []string
	Follows         []string
	AlbumRequests   []string
	AlbumLimits     []int
	ContainsBatches [][]string
	SaveBatches     [][]string
	PlaylistUsers   []string
	PlaylistFetches int
	TrackRequests   []string
}

// NewFakeLibrary creates an empty FakeLibrary.
func NewFakeLibrary() *FakeLibrary {
	return &FakeLibrary{
		Catalog: make(map[string]models.Artist),
		Albums:  make(map[string][]models.Album),
		Saved:   make(map[string]bool),
		Tracks:  make(map[string][][]models.Track),
		Errors:  make(map[string]error),
	}
}

// AddArtist registers a catalog entry for name with the given releases.
func (f *FakeLibrary) AddArtist(name, id string, albums ...models.Album) {
	f.Catalog[models.NormalizeArtist(name)] = models.Artist{ID: id, Name: name}
	f.Albums[id] = albums
}

func (f *FakeLibrary) Name() string { return "fake" }

func (f *FakeLibrary) SearchArtist(ctx context.Context, name string) (*models.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Searches = append(f.Searches, name)
	if err := f.Errors["search"]; err != nil {
		return nil, err
	}
	a, ok := f.Catalog[models.NormalizeArtist(name)]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *FakeLibrary) FollowArtists(ctx context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := checkBatch(ids); err != nil {
		return err
	}
	if err := f.Errors["follow"]; err != nil {
		return err
	}
	f.Follows = append(f.Follows, ids...)
	return nil
}

func (f *FakeLibrary) ArtistAlbums(ctx context.Context, artistID string, limit int) ([]models.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AlbumRequests = append(f.AlbumRequests, artistID)
	f.AlbumLimits = append(f.AlbumLimits, limit)
	if err := f.Errors["albums"]; err != nil {
		return nil, err
	}
	albums := f.Albums[artistID]
	if limit > 0 && len(albums) > limit {
		albums = albums[:limit]
	}
	return albums, nil
}

func (f *FakeLibrary) HasSavedAlbums(ctx context.Context, ids ...string) ([]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := checkBatch(ids); err != nil {
		return nil, err
	}
	f.ContainsBatches = append(f.ContainsBatches, append([]string(nil), ids...))
	if err := f.Errors["contains"]; err != nil {
		return nil, err
	}
	out := make([]bool, len(ids))
	for i, id := range ids {
		out[i] = f.Saved[id]
	}
	return out, nil
}

func (f *FakeLibrary) SaveAlbums(ctx context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := checkBatch(ids); err != nil {
		return err
	}
	if err := f.Errors["save"]; err != nil {
		return err
	}
	f.SaveBatches = append(f.SaveBatches, append([]string(nil), ids...))
	for _, id := range ids {
		f.Saved[id] = true
	}
	return nil
}

// SavedCount returns the total number of album ids submitted to SaveAlbums.
func (f *FakeLibrary) SavedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.SaveBatches {
		n += len(b)
	}
	return n
}

func (f *FakeLibrary) Playlists(userID string) *services.Iterator[models.Playlist] {
	f.mu.Lock()
	f.PlaylistUsers = append(f.PlaylistUsers, userID)
	f.mu.Unlock()

	return services.NewIterator(func(ctx context.Context, cursor string) ([]models.Playlist, string, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if err := f.Errors["playlists"]; err != nil {
			return nil, "", err
		}
		f.PlaylistFetches++
		return page(f.Pages, cursor)
	})
}

func (f *FakeLibrary) PlaylistTracks(playlistID string) *services.Iterator[models.Track] {
	return services.NewIterator(func(ctx context.Context, cursor string) ([]models.Track, string, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.TrackRequests = append(f.TrackRequests, playlistID)
		if err := f.Errors["tracks"]; err != nil {
			return nil, "", err
		}
		return page(f.Tracks[playlistID], cursor)
	})
}

// page serves pages[cursor], using the page index as the continuation cursor.
func page[T any](pages [][]T, cursor string) ([]T, string, error) {
	idx := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 || n >= len(pages) {
			return nil, "", fmt.Errorf("bad cursor %q", cursor)
		}
		idx = n
	}
	if len(pages) == 0 {
		return nil, "", nil
	}
	next := ""
	if idx+1 < len(pages) {
		next = strconv.Itoa(idx + 1)
	}
	return pages[idx], next, nil
}

func checkBatch(ids []string) error {
	if len(ids) > services.MaxIDsPerRequest {
		return fmt.Errorf("%w: %d ids", shared.ErrTooManyIDs, len(ids))
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: empty batch", shared.ErrInvalidInput)
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: empty id", shared.ErrInvalidInput)
		}
	}
	return nil
}
