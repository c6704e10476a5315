package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/tasks"
)

// Reporter prints progress updates as they arrive.
type Reporter struct {
	w       io.Writer
	verbose bool
	done    chan struct{}
}

// NewReporter creates a Reporter writing to w. Without verbose, only per-artist results, skips and harvested
// playlists are printed.
func NewReporter(w io.Writer, verbose bool) *Reporter {
	return &Reporter{w: w, verbose: verbose}
}

// Watch consumes progress in the background until the channel is closed.
func (r *Reporter) Watch(progress <-chan tasks.ProgressUpdate) {
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		for u := range progress {
			if line := r.Line(u); line != "" {
				fmt.Fprintln(r.w, line)
			}
		}
	}()
}

// Wait blocks until the watched channel has been closed and drained.
func (r *Reporter) Wait() {
	if r.done != nil {
		<-r.done
	}
}

// Line renders a single update, or "" when it is not shown at this verbosity.
func (r *Reporter) Line(u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.SaveAlbums:
		if o, ok := u.Data.(models.ArtistOutcome); ok && o.AlbumsAdded > 0 {
			return OK("✓ ") + u.Message
		}
		return "  " + u.Message
	case tasks.Skip:
		return Warn("- " + u.Message)
	case tasks.Harvest:
		return "→ " + u.Message
	case tasks.Resolve, tasks.Follow, tasks.FetchAlbums:
		if r.verbose {
			return Muted(u.Message)
		}
	}
	return ""
}

// RenderSyncResult summarizes a finished (or aborted) sync.
func RenderSyncResult(result *tasks.SyncResult, err error) string {
	var b strings.Builder

	switch {
	case err != nil:
		b.WriteString(Err("✗ Sync stopped: " + err.Error()))
	case result != nil && result.DryRun:
		b.WriteString(Title("Dry run complete (nothing was changed)"))
	default:
		b.WriteString(Title("✓ Sync complete"))
	}
	b.WriteString("\n")

	if result == nil {
		return b.String()
	}

	added, count := "Albums added", result.AlbumsAdded
	if result.DryRun {
		added, count = "Albums to add", result.AlbumsMissing
	}
	fmt.Fprintf(&b, "Artists:        %d (%d matched, %d without a match)\n",
		result.ArtistsTotal, result.ArtistsMatched, result.ArtistsSkipped)
	fmt.Fprintf(&b, "Albums found:   %d\n", result.AlbumsFound)
	fmt.Fprintf(&b, "Already owned:  %d\n", result.AlbumsOwned)
	fmt.Fprintf(&b, "%-16s%d\n", added+":", count)

	if processed := len(result.Outcomes); err != nil && processed < result.ArtistsTotal {
		b.WriteString(Warn(fmt.Sprintf("%d of %d artists processed before the failure", processed, result.ArtistsTotal)))
		b.WriteString("\n")
	}

	var unmatched []string
	for _, o := range result.Outcomes {
		if !o.Matched {
			unmatched = append(unmatched, models.DisplayArtist(o.Name))
		}
	}
	if len(unmatched) > 0 {
		b.WriteString("\n")
		b.WriteString(Warn(fmt.Sprintf("No match for %d artists:", len(unmatched))))
		for _, name := range unmatched {
			b.WriteString("\n  • " + name)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHarvestResult summarizes a playlist harvest.
func RenderHarvestResult(result *tasks.HarvestResult) string {
	if result == nil {
		return ""
	}
	return fmt.Sprintf("Harvested %d artists from %d playlists (%d generated playlists skipped, %d tracks read)\n",
		result.Artists.Len(), result.Playlists, result.PlaylistsSkipped, result.Tracks)
}
