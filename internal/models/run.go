package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a [SyncRun].
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Valid reports whether s is a known status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunPending, RunRunning, RunCompleted, RunFailed:
		return true
	}
	return false
}

// SyncRun is one invocation of the library sync, kept in the history ledger.
type SyncRun struct {
	id             string
	sequence       int
	userID         string
	status         RunStatus
	dryRun         bool
	artistsTotal   int
	artistsMatched int
	albumsAdded    int
	errorMessage   string
	startedAt      *time.Time
	completedAt    *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

// NewSyncRun creates a pending run for userID (empty for the current user).
func NewSyncRun(sequence int, userID string, dryRun bool) *SyncRun {
	now := time.Now()
	return &SyncRun{
		sequence:  sequence,
		userID:    userID,
		status:    RunPending,
		dryRun:    dryRun,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *SyncRun) ID() string              { return r.id }
func (r *SyncRun) Sequence() int           { return r.sequence }
func (r *SyncRun) UserID() string          { return r.userID }
func (r *SyncRun) Status() RunStatus       { return r.status }
func (r *SyncRun) DryRun() bool            { return r.dryRun }
func (r *SyncRun) ArtistsTotal() int       { return r.artistsTotal }
func (r *SyncRun) ArtistsMatched() int     { return r.artistsMatched }
func (r *SyncRun) AlbumsAdded() int        { return r.albumsAdded }
func (r *SyncRun) ErrorMessage() string    { return r.errorMessage }
func (r *SyncRun) StartedAt() *time.Time   { return r.startedAt }
func (r *SyncRun) CompletedAt() *time.Time { return r.completedAt }
func (r *SyncRun) CreatedAt() time.Time    { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time    { return r.updatedAt }

func (r *SyncRun) SetID(id string)              { r.id = id }
func (r *SyncRun) SetSequence(seq int)          { r.sequence = seq }
func (r *SyncRun) SetUpdatedAt(t time.Time)     { r.updatedAt = t }
func (r *SyncRun) SetCreatedAt(t time.Time)     { r.createdAt = t }
func (r *SyncRun) SetStartedAt(t *time.Time)    { r.startedAt = t }
func (r *SyncRun) SetCompletedAt(t *time.Time)  { r.completedAt = t }
func (r *SyncRun) SetErrorMessage(msg string)   { r.errorMessage = msg }
func (r *SyncRun) SetStatus(status RunStatus)   { r.status = status }
func (r *SyncRun) SetArtistsTotal(n int)        { r.artistsTotal = n }
func (r *SyncRun) SetCounts(matched, added int) { r.artistsMatched, r.albumsAdded = matched, added }

// Start marks the run as running.
func (r *SyncRun) Start(total int) {
	now := time.Now()
	r.status = RunRunning
	r.artistsTotal = total
	r.startedAt = &now
	r.updatedAt = now
}

// Finish marks the run completed, or failed when err is non-nil.
func (r *SyncRun) Finish(err error) {
	now := time.Now()
	r.completedAt = &now
	r.updatedAt = now
	if err != nil {
		r.status = RunFailed
		r.errorMessage = err.Error()
		return
	}
	r.status = RunCompleted
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *SyncRun) Duration() time.Duration {
	if r.startedAt == nil || r.completedAt == nil {
		return 0
	}
	return r.completedAt.Sub(*r.startedAt)
}

// Validate checks the run's fields.
func (r *SyncRun) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run id is required")
	}
	if !r.status.Valid() {
		return fmt.Errorf("invalid run status %q", r.status)
	}
	if r.artistsMatched > r.artistsTotal {
		return fmt.Errorf("matched artists (%d) exceed total (%d)", r.artistsMatched, r.artistsTotal)
	}
	return nil
}

// RunArtist is the persisted [ArtistOutcome] of one artist within a run.
type RunArtist struct {
	id        string
	runID     string
	position  int
	outcome   ArtistOutcome
	createdAt time.Time
	updatedAt time.Time
}

// NewRunArtist wraps outcome for storage under runID at the given position.
func NewRunArtist(runID string, position int, outcome ArtistOutcome) *RunArtist {
	now := time.Now()
	return &RunArtist{
		runID:     runID,
		position:  position,
		outcome:   outcome,
		createdAt: now,
		updatedAt: now,
	}
}

func (a *RunArtist) ID() string             { return a.id }
func (a *RunArtist) RunID() string          { return a.runID }
func (a *RunArtist) Position() int          { return a.position }
func (a *RunArtist) Outcome() ArtistOutcome { return a.outcome }
func (a *RunArtist) CreatedAt() time.Time   { return a.createdAt }
func (a *RunArtist) UpdatedAt() time.Time   { return a.updatedAt }

func (a *RunArtist) SetID(id string)          { a.id = id }
func (a *RunArtist) SetCreatedAt(t time.Time) { a.createdAt = t }
func (a *RunArtist) SetUpdatedAt(t time.Time) { a.updatedAt = t }

// Validate checks the outcome's fields.
func (a *RunArtist) Validate() error {
	if a.id == "" {
		return fmt.Errorf("run artist id is required")
	}
	if a.runID == "" {
		return fmt.Errorf("run id is required")
	}
	o := a.outcome
	if o.Matched && o.ArtistID == "" {
		return fmt.Errorf("matched artist %q has no catalog id", o.Name)
	}
	if o.AlbumsOwned+o.AlbumsAdded > o.AlbumsFound {
		return fmt.Errorf("artist %q: owned (%d) + added (%d) exceed found (%d)", o.Name, o.AlbumsOwned, o.AlbumsAdded, o.AlbumsFound)
	}
	return nil
}
