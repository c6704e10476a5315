package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/tagsync/internal/formatter"
	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/repositories"
	"github.com/desertthunder/tagsync/internal/shared"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v3"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// History lists recorded runs, or the per-artist outcomes of one run with --run.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	history := repositories.NewHistory(db)

	if ref := cmd.String("run"); ref != "" {
		format, err := formatter.ParseFormat(cmd.String("format"))
		if err != nil {
			return err
		}
		return r.showRun(history, ref, format)
	}

	runs, err := history.Runs.List(map[string]any{"limit": cmd.Int("limit")})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet. Use `tagsync sync --history DIR...` to record one.\n")
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		mode := "sync"
		if run.DryRun() {
			mode = "dry run"
		}
		started := "-"
		if t := run.StartedAt(); t != nil {
			started = t.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.Itoa(run.Sequence()),
			started,
			string(run.Status()),
			mode,
			fmt.Sprintf("%d/%d", run.ArtistsMatched(), run.ArtistsTotal()),
			strconv.Itoa(run.AlbumsAdded()),
			run.Duration().Round(time.Second).String(),
		})
	}

	return r.writePlain("%s\n", renderTable(
		[]string{"Run", "Started", "Status", "Mode", "Matched", "Added", "Duration"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))
}

func (r *Runner) showRun(history *repositories.History, ref string, format formatter.Format) error {
	run, err := findRun(history.Runs, ref)
	if err != nil {
		return err
	}

	artists, err := history.Artists.ListByRun(run.ID())
	if err != nil {
		return err
	}

	if format == formatter.Markdown {
		return formatter.WriteRunReport(r.output, run, artists)
	}

	outcomes := make([]models.ArtistOutcome, len(artists))
	for i, a := range artists {
		outcomes[i] = a.Outcome()
	}

	if format != formatter.Text {
		return formatter.WriteOutcomes(r.output, outcomes, format)
	}

	r.writePlain("Run #%d: %s, %d of %d artists matched, %d albums added\n",
		run.Sequence(), run.Status(), run.ArtistsMatched(), run.ArtistsTotal(), run.AlbumsAdded())
	if msg := run.ErrorMessage(); msg != "" {
		r.writePlain("Error: %s\n", msg)
	}

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		matched := "no"
		if o.Matched {
			matched = "yes"
		}
		rows = append(rows, []string{
			models.DisplayArtist(o.Name),
			matched,
			strconv.Itoa(o.AlbumsFound),
			strconv.Itoa(o.AlbumsOwned),
			strconv.Itoa(o.AlbumsAdded),
		})
	}

	return r.writePlain("%s\n", renderTable(
		[]string{"Artist", "Matched", "Found", "Owned", "Added"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))
}

// findRun resolves a run by sequence number, falling back to its id.
func findRun(runs *repositories.RunRepository, ref string) (*models.SyncRun, error) {
	if seq, err := strconv.Atoi(ref); err == nil {
		run, err := runs.GetBySequence(seq)
		if err == nil || !errors.Is(err, repositories.ErrNotFound) {
			return run, err
		}
	}

	run, err := runs.Get(ref)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: no run %q", shared.ErrInvalidArgument, ref)
	}
	return run, err
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
