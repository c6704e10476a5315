package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/shared"
)

const runArtistColumns = `id, run_id, position, name, artist_id, matched, followed,
	albums_found, albums_owned, albums_added, created_at, updated_at`

// RunArtistRepository implements models.Repository[*models.RunArtist] for per-artist outcomes of a run.
type RunArtistRepository struct {
	db *sql.DB
}

// NewRunArtistRepository creates a new RunArtistRepository with the given database connection
func NewRunArtistRepository(db *sql.DB) *RunArtistRepository {
	return &RunArtistRepository{db: db}
}

// Create inserts an outcome with a generated ID. A name already recorded for the run is rejected.
func (r *RunArtistRepository) Create(a *models.RunArtist) error {
	a.SetID(shared.GenerateID())

	if err := a.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	o := a.Outcome()
	query := `INSERT INTO run_artists (` + runArtistColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		a.ID(),
		a.RunID(),
		a.Position(),
		o.Name,
		o.ArtistID,
		o.Matched,
		o.Followed,
		o.AlbumsFound,
		o.AlbumsOwned,
		o.AlbumsAdded,
		a.CreatedAt(),
		a.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run artist: %w", err)
	}

	return nil
}

// Get retrieves an outcome by ID
func (r *RunArtistRepository) Get(id string) (*models.RunArtist, error) {
	query := `SELECT ` + runArtistColumns + ` FROM run_artists WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// Update rewrites the outcome's counters.
func (r *RunArtistRepository) Update(a *models.RunArtist) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	a.SetUpdatedAt(now)
	o := a.Outcome()

	query := `
		UPDATE run_artists
		SET artist_id = ?, matched = ?, followed = ?, albums_found = ?, albums_owned = ?, albums_added = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		o.ArtistID, o.Matched, o.Followed, o.AlbumsFound, o.AlbumsOwned, o.AlbumsAdded, now, a.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run artist: %w", err)
	}

	return expectRow(result, "run artist", a.ID())
}

// Delete removes an outcome by ID
func (r *RunArtistRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM run_artists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run artist: %w", err)
	}
	return expectRow(result, "run artist", id)
}

// List retrieves outcomes in processing order.
//
// Supported criteria: "run_id" (string), "matched" (bool).
func (r *RunArtistRepository) List(criteria map[string]any) ([]*models.RunArtist, error) {
	query := `SELECT ` + runArtistColumns + ` FROM run_artists WHERE 1 = 1`
	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	if matched, ok := criteria["matched"].(bool); ok {
		query += " AND matched = ?"
		args = append(args, matched)
	}

	query += " ORDER BY run_id, position ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run artists: %w", err)
	}
	defer rows.Close()

	var out []*models.RunArtist
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return out, nil
}

// ListByRun returns the outcomes recorded for runID.
func (r *RunArtistRepository) ListByRun(runID string) ([]*models.RunArtist, error) {
	return r.List(map[string]any{"run_id": runID})
}

func (r *RunArtistRepository) scan(row scanner) (*models.RunArtist, error) {
	var (
		id        string
		runID     string
		position  int
		o         models.ArtistOutcome
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(
		&id, &runID, &position, &o.Name, &o.ArtistID, &o.Matched, &o.Followed,
		&o.AlbumsFound, &o.AlbumsOwned, &o.AlbumsAdded, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run artist %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run artist: %w", err)
	}

	a := models.NewRunArtist(runID, position, o)
	a.SetID(id)
	a.SetCreatedAt(createdAt)
	a.SetUpdatedAt(updatedAt)

	return a, nil
}
