package main

import (
	"context"
	"io"

	"github.com/desertthunder/tagsync/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Scan prints (or saves) the normalized artist set of the given directories.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output != "" && !cmd.IsSet("format") {
		format = formatter.FormatForPath(output, format)
	}

	result, err := r.newScanner(r.ignoreList()).Scan(ctx, cmd.Args().Slice())
	if err != nil {
		return err
	}

	if len(result.Skipped) > 0 {
		r.logger.Warn("some files could not be read", "count", len(result.Skipped))
	}
	r.logger.Info("scan complete", "files", result.FilesSeen, "read", result.FilesRead, "artists", result.Artists.Len())

	names := result.Artists.Sorted()
	if output == "" {
		return formatter.WriteArtists(r.output, names, format)
	}

	if err := formatter.SaveFile(output, func(w io.Writer) error {
		return formatter.WriteArtists(w, names, format)
	}); err != nil {
		return err
	}

	return r.writePlain("✓ %d artists saved to %s\n", len(names), output)
}
