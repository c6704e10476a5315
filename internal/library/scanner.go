package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/shared"
)

// DefaultExtensions lists the audio containers read for artist tags.
var DefaultExtensions = []string{".mp3", ".wav", ".ogg"}

// TagReader extracts artist names from a single audio file.
//
// Implementations must release any file handle before returning.
type TagReader interface {
	Artists(path string) ([]string, error)
}

// ScannerOpts configures a [Scanner].
type ScannerOpts struct {
	Reader     TagReader         // Tag reader (default: ID3Reader)
	Extensions []string          // Allow-listed extensions (default: .mp3, .wav, .ogg)
	Ignore     models.IgnoreList // Sentinel names never collected (default: models.DefaultIgnore)
	Logger     *log.Logger       // Logger for progress and skipped files (default: stderr)
}

// SkippedFile records a file or directory that could not be read.
type SkippedFile struct {
	Path string
	Err  error
}

// ScanResult is the outcome of a full scan.
type ScanResult struct {
	Artists   *models.ArtistSet
	FilesSeen int           // allow-listed files encountered
	FilesRead int           // of those, tags read successfully
	Skipped   []SkippedFile // unreadable files and directories
}

// Scanner walks directory trees and collects normalized artist names from audio tags.
type Scanner struct {
	reader     TagReader
	extensions map[string]struct{}
	ignore     models.IgnoreList
	logger     *log.Logger
}

// NewScanner creates a Scanner, filling unset options with defaults.
func NewScanner(opts ScannerOpts) *Scanner {
	if opts.Reader == nil {
		opts.Reader = ID3Reader{}
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Ignore == nil {
		opts.Ignore = models.NewIgnoreList(models.DefaultIgnore...)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}

	return &Scanner{reader: opts.Reader, extensions: exts, ignore: opts.Ignore, logger: opts.Logger}
}

// ValidateDirs checks that every path exists and is a directory.
func ValidateDirs(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one directory is required", shared.ErrMissingArgument)
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", shared.ErrInvalidArgument, p, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, p)
		}
	}
	return nil
}

// Accepts reports whether path has an allow-listed extension.
func (s *Scanner) Accepts(path string) bool {
	_, ok := s.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Scan validates dirs and visits every file beneath them.
//
// Unreadable files are logged and recorded in [ScanResult.Skipped]; they never abort the walk.
// The result is returned only once every directory has been visited.
func (s *Scanner) Scan(ctx context.Context, dirs []string) (*ScanResult, error) {
	if err := ValidateDirs(dirs); err != nil {
		return nil, err
	}

	result := &ScanResult{Artists: models.NewArtistSet(s.ignore)}

	for _, dir := range dirs {
		s.logger.Info("scanning directory", "path", dir)
		before := result.Artists.Len()

		if err := s.walk(ctx, dir, result); err != nil {
			return nil, err
		}

		s.logger.Info("finished directory", "path", dir, "new_artists", result.Artists.Len()-before)
	}

	return result, nil
}

func (s *Scanner) walk(ctx context.Context, root string, result *ScanResult) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %s: %v", shared.ErrInvalidArgument, root, err)
			}
			s.skip(result, path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root {
				s.logger.Debug("entering directory", "path", path)
			}
			return nil
		}

		if !d.Type().IsRegular() || !s.Accepts(path) {
			return nil
		}

		result.FilesSeen++
		artists, err := s.reader.Artists(path)
		if err != nil {
			s.skip(result, path, err)
			return nil
		}
		result.FilesRead++

		if n := result.Artists.Add(artists...); n > 0 {
			s.logger.Debug("collected artists", "path", path, "new", n)
		}
		return nil
	})
}

func (s *Scanner) skip(result *ScanResult, path string, err error) {
	result.Skipped = append(result.Skipped, SkippedFile{Path: path, Err: err})
	s.logger.Warn("skipping unreadable file", "path", path, "error", err)
}

// SkippedErr joins the errors of every skipped file, or returns nil.
func (r *ScanResult) SkippedErr() error {
	errs := make([]error, 0, len(r.Skipped))
	for _, f := range r.Skipped {
		errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
	}
	return errors.Join(errs...)
}
