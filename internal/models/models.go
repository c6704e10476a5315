// package models defines the data model for artist scanning and library synchronization
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
// Implementations include SyncRun and RunArtist.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Artist is a resolved catalog entry for a local artist name.
type Artist struct {
	ID   string
	Name string
}

// Album groups and types as reported by the catalog.
const (
	AlbumTypeAlbum       = "album"
	AlbumTypeSingle      = "single"
	AlbumTypeCompilation = "compilation"
	AlbumGroupAppearsOn  = "appears_on"
)

// Album is a release of an artist.
type Album struct {
	ID    string
	Name  string
	Type  string // album, single, compilation
	Group string // relation to the artist: album, single, compilation, appears_on
}

// IsStudioAlbum reports whether the release is a full album credited to the artist, as opposed to a single,
// a compilation, or an album the artist merely appears on.
func (a Album) IsStudioAlbum() bool {
	if a.Type != AlbumTypeAlbum {
		return false
	}
	return a.Group != AlbumGroupAppearsOn && a.Group != AlbumTypeCompilation
}

// Playlist represents a playlist in the user's library.
type Playlist struct {
	ID         string
	Name       string
	OwnerID    string
	TrackCount int
}

// Track represents a playlist entry with every credited artist name.
type Track struct {
	ID      string
	Name    string
	Artists []string
}

// ArtistOutcome records what a sync did for one artist name.
type ArtistOutcome struct {
	Name        string // normalized local name
	ArtistID    string // empty when unmatched
	Matched     bool
	Followed    bool
	AlbumsFound int // studio albums listed for the artist
	AlbumsOwned int // of those, already saved
	AlbumsAdded int // newly saved; always 0 in a dry run
}

// AlbumsMissing is the number of listed albums not yet saved, whether or not they were added.
func (o ArtistOutcome) AlbumsMissing() int {
	return o.AlbumsFound - o.AlbumsOwned
}
