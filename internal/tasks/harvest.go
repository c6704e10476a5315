package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/shared"
)

// DefaultGeneratedOwners lists accounts whose playlists are generated by the service itself.
var DefaultGeneratedOwners = []string{"spotify"}

// HarvestOpts configures [LibrarySync.HarvestPlaylistArtists].
type HarvestOpts struct {
	UserID          string            // Whose playlists to read; empty for the current user
	Ignore          models.IgnoreList // Names never collected (default: models.DefaultIgnore)
	GeneratedOwners []string          // Owner ids whose playlists are skipped (default: DefaultGeneratedOwners)
}

// HarvestResult holds the artists credited on the harvested playlists.
type HarvestResult struct {
	Artists          *models.ArtistSet
	Playlists        int // playlists read
	PlaylistsSkipped int // generated playlists
	Tracks           int
}

// HarvestPlaylistArtists collects every artist credited on the user's playlists, skipping playlists owned by
// generated accounts. It only reads from the library.
func (s *LibrarySync) HarvestPlaylistArtists(ctx context.Context, opts HarvestOpts, progress chan<- ProgressUpdate) (*HarvestResult, error) {
	if s.lib == nil {
		return nil, fmt.Errorf("%w: library service not initialized", shared.ErrServiceUnavailable)
	}

	owners := opts.GeneratedOwners
	if owners == nil {
		owners = DefaultGeneratedOwners
	}
	generated := make(map[string]struct{}, len(owners))
	for _, o := range owners {
		generated[strings.ToLower(strings.TrimSpace(o))] = struct{}{}
	}

	result := &HarvestResult{Artists: models.NewArtistSet(opts.Ignore)}
	step := 0

	playlists := s.lib.Playlists(opts.UserID)
	for playlists.Next(ctx) {
		pl := playlists.Item()
		step++

		if _, skip := generated[strings.ToLower(pl.OwnerID)]; skip {
			result.PlaylistsSkipped++
			s.logger.Debug("skipping generated playlist", "playlist", pl.Name, "owner", pl.OwnerID)
			sendProgress(progress, harvestSkipUpdate(step, pl))
			continue
		}

		sendProgress(progress, harvestUpdate(step, pl))
		before := result.Artists.Len()

		tracks := s.lib.PlaylistTracks(pl.ID)
		for tracks.Next(ctx) {
			result.Tracks++
			result.Artists.Add(tracks.Item().Artists...)
		}
		if err := tracks.Err(); err != nil {
			return result, fmt.Errorf("playlist %q: %w", pl.Name, err)
		}

		result.Playlists++
		s.logger.Debug("harvested playlist", "playlist", pl.Name, "new_artists", result.Artists.Len()-before)
	}
	if err := playlists.Err(); err != nil {
		return result, fmt.Errorf("list playlists: %w", err)
	}

	s.logger.Info("harvested playlist artists",
		"playlists", result.Playlists, "skipped", result.PlaylistsSkipped, "artists", result.Artists.Len())
	return result, nil
}
