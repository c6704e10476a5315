package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/shared"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const runColumns = `id, sequence, user_id, status, dry_run, artists_total, artists_matched, albums_added,
	error_message, started_at, completed_at, created_at, updated_at`

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// RunRepository implements models.Repository[*models.SyncRun] for the sync history ledger.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run with generated ID and sequence
func (r *RunRepository) Create(run *models.SyncRun) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.UserID(),
		string(run.Status()),
		run.DryRun(),
		run.ArtistsTotal(),
		run.ArtistsMatched(),
		run.AlbumsAdded(),
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a run by its sequence number.
func (r *RunRepository) GetBySequence(sequence int) (*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE sequence = ?`
	return r.scan(r.db.QueryRow(query, sequence))
}

// Latest returns the run with the highest sequence.
func (r *RunRepository) Latest() (*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY sequence DESC LIMIT 1`
	return r.scan(r.db.QueryRow(query))
}

// Update writes the run's status, counters, and timestamps.
func (r *RunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET status = ?, artists_total = ?, artists_matched = ?, albums_added = ?,
			error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		string(run.Status()),
		run.ArtistsTotal(),
		run.ArtistsMatched(),
		run.AlbumsAdded(),
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return expectRow(result, "run", run.ID())
}

// Delete removes a run and, by cascade, its artist outcomes.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return expectRow(result, "run", id)
}

// List retrieves runs newest first.
//
// Supported criteria: "status" (string or models.RunStatus), "user_id" (string), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1 = 1`
	args := []any{}

	switch status := criteria["status"].(type) {
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	case models.RunStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func (r *RunRepository) scan(row scanner) (*models.SyncRun, error) {
	var (
		id             string
		sequence       int
		userID         string
		status         string
		dryRun         bool
		artistsTotal   int
		artistsMatched int
		albumsAdded    int
		errorMessage   sql.NullString
		startedAt      sql.NullTime
		completedAt    sql.NullTime
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(
		&id, &sequence, &userID, &status, &dryRun, &artistsTotal, &artistsMatched, &albumsAdded,
		&errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewSyncRun(sequence, userID, dryRun)
	run.SetID(id)
	run.SetStatus(models.RunStatus(status))
	run.SetArtistsTotal(artistsTotal)
	run.SetCounts(artistsMatched, albumsAdded)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if errorMessage.Valid {
		run.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		run.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}

	return run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func expectRow(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %w: %s", entity, ErrNotFound, id)
	}
	return nil
}
