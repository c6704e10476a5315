package library

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/desertthunder/tagsync/internal/shared"
)

const id3Magic = "ID3"

// ID3Reader reads the lead artist (TPE1) frame of an ID3v2 tag.
//
// Files that do not start with an ID3v2 header fail with [shared.ErrNoTag].
// A tag without an artist frame yields no artists and no error.
type ID3Reader struct{}

// Artists opens path, parses only the artist frame, and closes the file before returning.
func (ID3Reader) Artists(path string) ([]string, error) {
	if err := checkHeader(path); err != nil {
		return nil, err
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Artist"}})
	if err != nil {
		return nil, fmt.Errorf("read tag: %w", err)
	}
	defer tag.Close()

	return splitArtists(tag.Artist()), nil
}

// checkHeader peeks at the first bytes of path. id3v2.Open treats a missing header as an empty tag.
func checkHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read tag: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(id3Magic))
	if _, err := io.ReadFull(f, header); err != nil || string(header) != id3Magic {
		return fmt.Errorf("read tag: %w", shared.ErrNoTag)
	}
	return nil
}

// splitArtists splits a multi-value text frame. ID3v2.4 separates values with NUL.
func splitArtists(value string) []string {
	parts := strings.Split(value, "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
