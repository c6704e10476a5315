package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/services"
	"github.com/desertthunder/tagsync/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultPause      = 250 * time.Millisecond
	DefaultAlbumLimit = services.MaxAlbumPage
	DefaultBatchSize  = services.MaxIDsPerRequest
)

// Recorder receives the outcome of every artist as soon as it has been processed.
type Recorder interface {
	RecordArtist(ctx context.Context, position int, outcome models.ArtistOutcome) error
}

// SyncOpts contains configuration for a library sync.
type SyncOpts struct {
	BatchSize   int           // Album ids per save call (default and maximum: services.MaxIDsPerRequest)
	AlbumLimit  int           // Albums listed per artist, a single page (default and maximum: 50)
	Pause       time.Duration // Fixed delay after each artist before the next one starts (0 disables pacing)
	RequestRate float64       // Remote calls per second across the whole run (0 means unlimited)
	DryRun      bool          // Resolve and diff only; never follow or save
	Recorder    Recorder      // Optional per-artist outcome sink
	Logger      *log.Logger   // Defaults to stderr
}

// SyncResult summarizes a sync run. On error it holds the artists processed before the failure.
type SyncResult struct {
	ArtistsTotal   int
	ArtistsMatched int
	ArtistsSkipped int // no catalog match
	AlbumsFound    int
	AlbumsOwned    int
	AlbumsMissing  int // not yet saved; equals AlbumsAdded unless the run was dry
	AlbumsAdded    int
	SaveCalls      int
	DryRun         bool
	Outcomes       []models.ArtistOutcome
}

func (r *SyncResult) add(o models.ArtistOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	if !o.Matched {
		r.ArtistsSkipped++
		return
	}
	r.ArtistsMatched++
	r.AlbumsFound += o.AlbumsFound
	r.AlbumsOwned += o.AlbumsOwned
	r.AlbumsMissing += o.AlbumsMissing()
	r.AlbumsAdded += o.AlbumsAdded
}

// LibrarySync follows artists and saves their missing albums on a [services.Library].
//
// Artists are processed one at a time in sorted order. A failed remote call ends the run; nothing already
// followed or saved is rolled back.
type LibrarySync struct {
	lib     services.Library
	opts    SyncOpts
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewLibrarySync creates a LibrarySync, filling unset options with defaults.
func NewLibrarySync(lib services.Library, opts SyncOpts) *LibrarySync {
	if opts.BatchSize <= 0 || opts.BatchSize > services.MaxIDsPerRequest {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.AlbumLimit <= 0 || opts.AlbumLimit > services.MaxAlbumPage {
		opts.AlbumLimit = DefaultAlbumLimit
	}
	if opts.Pause < 0 {
		opts.Pause = 0
	}
	if opts.RequestRate < 0 {
		opts.RequestRate = 0
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.RequestRate > 0 {
		limit = rate.Limit(opts.RequestRate)
	}

	return &LibrarySync{
		lib:     lib,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SyncArtists reconciles every artist in the set against the library.
func (s *LibrarySync) SyncArtists(ctx context.Context, artists *models.ArtistSet, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if s.lib == nil {
		return nil, fmt.Errorf("%w: library service not initialized", shared.ErrServiceUnavailable)
	}
	if artists == nil {
		return nil, fmt.Errorf("%w: artist set is nil", shared.ErrInvalidInput)
	}

	names := artists.Sorted()
	total := len(names)
	result := &SyncResult{ArtistsTotal: total, DryRun: s.opts.DryRun}

	s.logger.Info("syncing artists", "count", total, "dry_run", s.opts.DryRun)

	for i, name := range names {
		step := i + 1
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome, calls, err := s.syncArtist(ctx, step, total, name, progress)
		result.SaveCalls += calls
		if err != nil {
			return result, fmt.Errorf("sync %q: %w", name, err)
		}
		result.add(outcome)

		if s.opts.Recorder != nil {
			if err := s.opts.Recorder.RecordArtist(ctx, i, outcome); err != nil {
				s.logger.Warn("failed to record artist", "artist", name, "error", err)
			}
		}

		if step < total {
			if err := s.pause(ctx); err != nil {
				return result, err
			}
		}
	}

	s.logger.Info("sync complete",
		"artists", total, "matched", result.ArtistsMatched, "albums_added", result.AlbumsAdded)
	return result, nil
}

// pause waits the configured delay, returning early when ctx is done.
func (s *LibrarySync) pause(ctx context.Context) error {
	if s.opts.Pause <= 0 {
		return nil
	}
	timer := time.NewTimer(s.opts.Pause)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wait blocks until the request limiter admits one more remote call.
func (s *LibrarySync) wait(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

func (s *LibrarySync) syncArtist(ctx context.Context, step, total int, name string, progress chan<- ProgressUpdate) (models.ArtistOutcome, int, error) {
	outcome := models.ArtistOutcome{Name: name}
	sendProgress(progress, resolveUpdate(step, total, name))

	if err := s.wait(ctx); err != nil {
		return outcome, 0, err
	}
	artist, err := s.lib.SearchArtist(ctx, name)
	if err != nil {
		return outcome, 0, err
	}
	if artist == nil {
		s.logger.Debug("no catalog match", "artist", name)
		sendProgress(progress, skipUpdate(step, total, name))
		return outcome, 0, nil
	}
	outcome.Matched = true
	outcome.ArtistID = artist.ID

	if !s.opts.DryRun {
		if err := s.wait(ctx); err != nil {
			return outcome, 0, err
		}
		if err := s.lib.FollowArtists(ctx, artist.ID); err != nil {
			return outcome, 0, err
		}
		outcome.Followed = true
		sendProgress(progress, followUpdate(step, total, artist))
	}

	sendProgress(progress, fetchAlbumsUpdate(step, total, artist))
	candidates, err := s.studioAlbums(ctx, artist.ID)
	if err != nil {
		return outcome, 0, err
	}
	outcome.AlbumsFound = len(candidates)

	missing, err := s.unsaved(ctx, candidates)
	if err != nil {
		return outcome, 0, err
	}
	outcome.AlbumsOwned = len(candidates) - len(missing)

	calls := 0
	if !s.opts.DryRun {
		for _, batch := range Chunk(missing, s.opts.BatchSize) {
			if err := s.wait(ctx); err != nil {
				return outcome, calls, err
			}
			if err := s.lib.SaveAlbums(ctx, batch...); err != nil {
				return outcome, calls, err
			}
			calls++
		}
		outcome.AlbumsAdded = len(missing)
	}

	display := models.DisplayArtist(name)
	if outcome.AlbumsFound == 0 {
		s.logger.Info("no albums", "artist", display)
	} else {
		s.logger.Info("synced artist", "artist", display,
			"found", outcome.AlbumsFound, "owned", outcome.AlbumsOwned, "missing", outcome.AlbumsMissing(), "added", outcome.AlbumsAdded)
	}
	sendProgress(progress, saveAlbumsUpdate(step, total, outcome, s.opts.DryRun))

	return outcome, calls, nil
}

// studioAlbums lists one page of the artist's releases and keeps distinct full album ids in listing order.
func (s *LibrarySync) studioAlbums(ctx context.Context, artistID string) ([]string, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	albums, err := s.lib.ArtistAlbums(ctx, artistID, s.opts.AlbumLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(albums))
	ids := make([]string, 0, len(albums))
	for _, a := range albums {
		if !a.IsStudioAlbum() || a.ID == "" {
			continue
		}
		if _, dup := seen[a.ID]; dup {
			continue
		}
		seen[a.ID] = struct{}{}
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// unsaved returns the ids the library reports as not yet saved, in input order.
func (s *LibrarySync) unsaved(ctx context.Context, ids []string) ([]string, error) {
	var missing []string
	for _, batch := range Chunk(ids, services.MaxIDsPerRequest) {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}
		saved, err := s.lib.HasSavedAlbums(ctx, batch...)
		if err != nil {
			return nil, err
		}
		if len(saved) != len(batch) {
			return nil, fmt.Errorf("%w: saved-album check returned %d results for %d ids", shared.ErrAPIRequest, len(saved), len(batch))
		}
		for i, ok := range saved {
			if !ok {
				missing = append(missing, batch[i])
			}
		}
	}
	return missing, nil
}
