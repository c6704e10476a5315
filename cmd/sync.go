package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tagsync/internal/library"
	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/repositories"
	"github.com/desertthunder/tagsync/internal/shared"
	"github.com/desertthunder/tagsync/internal/tasks"
	"github.com/desertthunder/tagsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Sync scans the given directories, optionally adds artists from playlists, and reconciles the library.
//
// Directories are validated before the lock is taken or Spotify is contacted.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	dirs := cmd.Args().Slice()
	if err := library.ValidateDirs(dirs); err != nil {
		return err
	}

	pause, err := r.config.Sync.PauseDuration()
	if err != nil {
		return err
	}

	lock, err := shared.AcquireRunLock(r.config.Sync.LockFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn("failed to release run lock", "error", err)
		}
	}()

	harvest := cmd.Bool("playlists")
	dryRun := cmd.Bool("dry-run")
	userID := cmd.String("user")

	ignore := r.ignoreList()
	scan, err := r.newScanner(ignore).Scan(ctx, dirs)
	if err != nil {
		return err
	}
	artists := scan.Artists
	r.writePlain("Found %d artists in %d of %d audio files\n", artists.Len(), scan.FilesRead, scan.FilesSeen)

	lib, err := r.connect(ctx, harvest)
	if err != nil {
		return err
	}

	opts := tasks.SyncOpts{
		BatchSize:   r.config.Sync.BatchSize,
		AlbumLimit:  r.config.Sync.AlbumLimit,
		Pause:       pause,
		RequestRate: r.config.Sync.RequestRate,
		DryRun:      dryRun,
		Logger:      r.logger,
	}

	var history *repositories.History
	if cmd.Bool("history") {
		db, err := r.openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()
		history = repositories.NewHistory(db)
		opts.Recorder = history
	}

	librarySync := tasks.NewLibrarySync(lib, opts)

	if harvest {
		found, err := r.harvest(ctx, librarySync, tasks.HarvestOpts{
			UserID:          userID,
			Ignore:          ignore,
			GeneratedOwners: r.config.Sync.GeneratedOwners,
		})
		if err != nil {
			return authHint(err)
		}
		added := artists.Union(found.Artists)
		r.writePlain("%d new artists from playlists\n", added)
	}

	if history != nil {
		run, err := history.Begin(userID, dryRun, artists.Len())
		if err != nil {
			return err
		}
		r.logger.Debug("recording run", "sequence", run.Sequence(), "id", run.ID())
	}

	result, syncErr := r.runSync(ctx, librarySync, artists)

	if history != nil {
		matched, added := 0, 0
		if result != nil {
			matched, added = result.ArtistsMatched, result.AlbumsAdded
		}
		if run, err := history.Finish(matched, added, syncErr); err != nil {
			r.logger.Warn("failed to record run", "error", err)
		} else {
			r.writePlain("Recorded as run #%d\n", run.Sequence())
		}
	}

	if syncErr != nil {
		return authHint(syncErr)
	}
	return nil
}

func (r *Runner) runSync(ctx context.Context, s *tasks.LibrarySync, artists *models.ArtistSet) (*tasks.SyncResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := make(chan tasks.ProgressUpdate, 16)
	reporter := r.newReporter(cancel)
	reporter.Watch(progress)

	result, err := s.SyncArtists(ctx, artists, progress)
	close(progress)
	reporter.Wait()

	r.writePlainln("%s", ui.RenderSyncResult(result, err))
	return result, err
}

func (r *Runner) harvest(ctx context.Context, s *tasks.LibrarySync, opts tasks.HarvestOpts) (*tasks.HarvestResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := make(chan tasks.ProgressUpdate, 16)
	reporter := r.newReporter(cancel)
	reporter.Watch(progress)

	result, err := s.HarvestPlaylistArtists(ctx, opts, progress)
	close(progress)
	reporter.Wait()

	if err != nil {
		return nil, fmt.Errorf("playlist harvest failed: %w", err)
	}
	r.writePlain("%s", ui.RenderHarvestResult(result))
	return result, nil
}

// newReporter animates progress on a terminal and prints plain lines anywhere else.
func (r *Runner) newReporter(cancel context.CancelFunc) ui.ProgressWatcher {
	if shared.IsTerminal(r.output) {
		return ui.NewTeaReporter(r.output, r.verbose, cancel)
	}
	return ui.NewReporter(r.output, r.verbose)
}

// ignoreList falls back to the built-in sentinels when the config leaves sync.ignore empty.
func (r *Runner) ignoreList() models.IgnoreList {
	names := r.config.Sync.Ignore
	if len(names) == 0 {
		names = models.DefaultIgnore
	}
	return models.NewIgnoreList(names...)
}

func (r *Runner) newScanner(ignore models.IgnoreList) *library.Scanner {
	return library.NewScanner(library.ScannerOpts{
		Extensions: r.config.Scan.Extensions,
		Ignore:     ignore,
		Logger:     r.logger,
	})
}
