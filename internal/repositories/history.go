package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/tagsync/internal/models"
)

// History records sync runs and their per-artist outcomes.
//
// A History is bound to at most one open run at a time: Begin opens it, RecordArtist appends to it and Finish
// closes it. It satisfies the recorder interface of the sync task.
type History struct {
	Runs    *RunRepository
	Artists *RunArtistRepository
	run     *models.SyncRun
}

// NewHistory creates a History over db. Migrations must already have been applied.
func NewHistory(db *sql.DB) *History {
	return &History{Runs: NewRunRepository(db), Artists: NewRunArtistRepository(db)}
}

// Run returns the open run, or nil.
func (h *History) Run() *models.SyncRun { return h.run }

// Begin creates a running ledger entry for a sync over total artists.
func (h *History) Begin(userID string, dryRun bool, total int) (*models.SyncRun, error) {
	run := models.NewSyncRun(0, userID, dryRun)
	run.Start(total)
	if err := h.Runs.Create(run); err != nil {
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}
	h.run = run
	return run, nil
}

// RecordArtist stores one artist outcome under the open run.
func (h *History) RecordArtist(ctx context.Context, position int, outcome models.ArtistOutcome) error {
	if h.run == nil {
		return fmt.Errorf("no open run")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.Artists.Create(models.NewRunArtist(h.run.ID(), position, outcome))
}

// Finish closes the open run with its final counts. A non-nil runErr marks it failed.
func (h *History) Finish(matched, added int, runErr error) (*models.SyncRun, error) {
	if h.run == nil {
		return nil, fmt.Errorf("no open run")
	}
	run := h.run
	run.SetCounts(matched, added)
	run.Finish(runErr)
	if err := h.Runs.Update(run); err != nil {
		return nil, fmt.Errorf("failed to finish run: %w", err)
	}
	h.run = nil
	return run, nil
}
