// package formatter renders scanned artists and sync outcomes as text, JSON, CSV or Markdown
package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/shared"
)

// Format is an output encoding.
type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// Formats lists the accepted values of [ParseFormat].
var Formats = []Format{Text, JSON, CSV, Markdown}

// ParseFormat maps a flag value (or file extension without the dot) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
}

// FormatForPath infers the format from a file extension, falling back to fallback.
func FormatForPath(path string, fallback Format) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return fallback
	}
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return fallback
}

type artistJSON struct {
	Name    string `json:"name"`
	Display string `json:"display"`
}

type outcomeJSON struct {
	Name        string `json:"name"`
	ArtistID    string `json:"artist_id,omitempty"`
	Matched     bool   `json:"matched"`
	Followed    bool   `json:"followed"`
	AlbumsFound int    `json:"albums_found"`
	AlbumsOwned int    `json:"albums_owned"`
	AlbumsAdded int    `json:"albums_added"`
}

// WriteArtists writes the normalized names in the requested format.
func WriteArtists(w io.Writer, names []string, format Format) error {
	switch format {
	case JSON:
		out := make([]artistJSON, len(names))
		for i, n := range names {
			out[i] = artistJSON{Name: n, Display: models.DisplayArtist(n)}
		}
		return writeJSON(w, out)
	case CSV:
		rows := make([][]string, len(names))
		for i, n := range names {
			rows[i] = []string{n, models.DisplayArtist(n)}
		}
		return writeCSV(w, []string{"Name", "Display"}, rows)
	case Markdown:
		if _, err := fmt.Fprintf(w, "# Artists\n\n**Count**: %d\n\n", len(names)); err != nil {
			return err
		}
		for _, n := range names {
			if _, err := fmt.Fprintf(w, "- %s\n", models.DisplayArtist(n)); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, n := range names {
			if _, err := fmt.Fprintln(w, n); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteOutcomes writes per-artist sync outcomes in the requested format.
func WriteOutcomes(w io.Writer, outcomes []models.ArtistOutcome, format Format) error {
	switch format {
	case JSON:
		out := make([]outcomeJSON, len(outcomes))
		for i, o := range outcomes {
			out[i] = outcomeJSON(o)
		}
		return writeJSON(w, out)
	case CSV:
		rows := make([][]string, len(outcomes))
		for i, o := range outcomes {
			rows[i] = []string{
				o.Name,
				o.ArtistID,
				strconv.FormatBool(o.Matched),
				strconv.FormatBool(o.Followed),
				strconv.Itoa(o.AlbumsFound),
				strconv.Itoa(o.AlbumsOwned),
				strconv.Itoa(o.AlbumsAdded),
			}
		}
		return writeCSV(w, []string{"Name", "ArtistID", "Matched", "Followed", "Found", "Owned", "Added"}, rows)
	case Markdown:
		return writeOutcomeTable(w, outcomes)
	default:
		for _, o := range outcomes {
			var err error
			if o.Matched {
				_, err = fmt.Fprintf(w, "%s: %d found, %d owned, %d added\n",
					models.DisplayArtist(o.Name), o.AlbumsFound, o.AlbumsOwned, o.AlbumsAdded)
			} else {
				_, err = fmt.Fprintf(w, "%s: no match\n", models.DisplayArtist(o.Name))
			}
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteRunReport renders a stored run and its outcomes as a Markdown document.
func WriteRunReport(w io.Writer, run *models.SyncRun, artists []*models.RunArtist) error {
	if run == nil {
		return fmt.Errorf("%w: run is nil", shared.ErrInvalidInput)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Sync run #%d\n\n", run.Sequence())
	fmt.Fprintf(&b, "**Status**: %s\n", run.Status())
	if run.DryRun() {
		b.WriteString("**Mode**: dry run\n")
	}
	if started := run.StartedAt(); started != nil {
		fmt.Fprintf(&b, "**Started**: %s\n", started.Format(time.RFC3339))
	}
	if d := run.Duration(); d > 0 {
		fmt.Fprintf(&b, "**Duration**: %s\n", d.Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "**Artists**: %d matched of %d\n", run.ArtistsMatched(), run.ArtistsTotal())
	fmt.Fprintf(&b, "**Albums added**: %d\n", run.AlbumsAdded())
	if msg := run.ErrorMessage(); msg != "" {
		fmt.Fprintf(&b, "**Error**: %s\n", msg)
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	outcomes := make([]models.ArtistOutcome, len(artists))
	for i, a := range artists {
		outcomes[i] = a.Outcome()
	}
	return writeOutcomeTable(w, outcomes)
}

// SaveFile writes data produced by render to path, creating parent directories.
func SaveFile(path string, render func(io.Writer) error) error {
	if path == "" {
		return fmt.Errorf("%w: output path is empty", shared.ErrMissingArgument)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func writeOutcomeTable(w io.Writer, outcomes []models.ArtistOutcome) error {
	var b strings.Builder
	b.WriteString("| Artist | Matched | Found | Owned | Added |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, o := range outcomes {
		matched := "no"
		if o.Matched {
			matched = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d |\n",
			escapeCell(models.DisplayArtist(o.Name)), matched, o.AlbumsFound, o.AlbumsOwned, o.AlbumsAdded)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeJSON(w io.Writer, v any) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func writeCSV(w io.Writer, headers []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}
