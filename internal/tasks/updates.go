package tasks

import (
	"fmt"

	"github.com/desertthunder/tagsync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Resolve Phase = iota
	Follow
	FetchAlbums
	SaveAlbums
	Skip
	Harvest
)

func (p Phase) String() string {
	switch p {
	case Resolve:
		return "resolve"
	case Follow:
		return "follow"
	case FetchAlbums:
		return "fetch_albums"
	case SaveAlbums:
		return "save_albums"
	case Skip:
		return "skip"
	case Harvest:
		return "harvest"
	default:
		return ""
	}
}

func resolveUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Resolve,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Searching for %s...", step, total, models.DisplayArtist(name)),
	}
}

func skipUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Skip,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] No match for %s", step, total, models.DisplayArtist(name)),
	}
}

func followUpdate(step, total int, artist *models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Follow,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Following %s (ID: %s)", step, total, artist.Name, artist.ID),
		Data:    artist,
	}
}

func fetchAlbumsUpdate(step, total int, artist *models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching albums for %s...", step, total, artist.Name),
	}
}

func saveAlbumsUpdate(step, total int, outcome models.ArtistOutcome, dryRun bool) ProgressUpdate {
	added := fmt.Sprintf("%d added", outcome.AlbumsAdded)
	if dryRun {
		added = fmt.Sprintf("%d to add", outcome.AlbumsMissing())
	}
	return ProgressUpdate{
		Phase: SaveAlbums,
		Step:  step,
		Total: total,
		Message: fmt.Sprintf("[%d/%d] %s: %d found, %d owned, %s",
			step, total, models.DisplayArtist(outcome.Name), outcome.AlbumsFound, outcome.AlbumsOwned, added),
		Data: outcome,
	}
}

func harvestUpdate(step int, pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Harvest,
		Step:    step,
		Message: fmt.Sprintf("Reading playlist: %s (%d tracks)", pl.Name, pl.TrackCount),
		Data:    pl,
	}
}

func harvestSkipUpdate(step int, pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Skip,
		Step:    step,
		Message: fmt.Sprintf("Skipping generated playlist: %s (owner: %s)", pl.Name, pl.OwnerID),
		Data:    pl,
	}
}
