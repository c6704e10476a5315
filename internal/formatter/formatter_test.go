package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/shared"
	th "github.com/desertthunder/tagsync/internal/testing"
)

var outcomes = []models.ArtistOutcome{
	{Name: "air", ArtistID: "sp-air", Matched: true, Followed: true, AlbumsFound: 6, AlbumsOwned: 4, AlbumsAdded: 2},
	{Name: "ghost | band"},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", Text, false},
		{"txt", Text, false},
		{"JSON", JSON, false},
		{" csv ", CSV, false},
		{"md", Markdown, false},
		{"markdown", Markdown, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidFlag) {
					t.Errorf("expected ErrInvalidFlag, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}

	t.Run("FormatForPath", func(t *testing.T) {
		for path, want := range map[string]Format{
			"artists.json": JSON,
			"out/a.CSV":    CSV,
			"README.md":    Markdown,
			"artists":      Text,
			"artists.yaml": Text,
		} {
			if got := FormatForPath(path, Text); got != want {
				t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
			}
		}
	})
}

func TestWriteArtists(t *testing.T) {
	names := []string{"air", "the national"}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteArtists(&buf, names, Text); err != nil {
			t.Fatalf("WriteArtists failed: %v", err)
		}
		if buf.String() != "air\nthe national\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteArtists(&buf, names, JSON); err != nil {
			t.Fatalf("WriteArtists failed: %v", err)
		}
		var got []map[string]string
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 2 || got[1]["name"] != "the national" || got[1]["display"] != "The National" {
			t.Errorf("unexpected JSON %v", got)
		}
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteArtists(&buf, names, CSV); err != nil {
			t.Fatalf("WriteArtists failed: %v", err)
		}
		out := buf.String()
		if !strings.HasPrefix(out, "Name,Display\n") || !strings.Contains(out, "the national,The National") {
			t.Errorf("unexpected CSV %q", out)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteArtists(&buf, names, Markdown); err != nil {
			t.Fatalf("WriteArtists failed: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "**Count**: 2") || !strings.Contains(out, "- The National\n") {
			t.Errorf("unexpected Markdown %q", out)
		}
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteArtists(&buf, nil, JSON); err != nil {
			t.Fatalf("WriteArtists failed: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected empty array, got %q", buf.String())
		}
	})

	t.Run("write errors", func(t *testing.T) {
		for _, f := range Formats {
			if err := WriteArtists(&th.FWriter{}, names, f); err == nil {
				t.Errorf("%s: expected write error", f)
			}
		}
	})

	t.Run("fails part way", func(t *testing.T) {
		var buf bytes.Buffer
		w := th.NewLimitedWriter(1, 0, &buf)
		if err := WriteArtists(&w, names, Text); err == nil {
			t.Error("expected error after the first line")
		}
		if buf.String() != "air\n" {
			t.Errorf("expected only the first line, got %q", buf.String())
		}
	})
}

func TestWriteOutcomes(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteOutcomes(&buf, outcomes, Text); err != nil {
			t.Fatalf("WriteOutcomes failed: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "Air: 6 found, 4 owned, 2 added") {
			t.Errorf("missing matched line in %q", out)
		}
		if !strings.Contains(out, "no match") {
			t.Errorf("missing unmatched line in %q", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteOutcomes(&buf, outcomes, JSON); err != nil {
			t.Fatalf("WriteOutcomes failed: %v", err)
		}
		var got []struct {
			Name        string `json:"name"`
			ArtistID    string `json:"artist_id"`
			AlbumsAdded int    `json:"albums_added"`
			Matched     bool   `json:"matched"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got[0].ArtistID != "sp-air" || got[0].AlbumsAdded != 2 || got[1].Matched {
			t.Errorf("unexpected JSON %+v", got)
		}
		if strings.Contains(buf.String(), `"artist_id": ""`) {
			t.Error("empty artist id should be omitted")
		}
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteOutcomes(&buf, outcomes, CSV); err != nil {
			t.Fatalf("WriteOutcomes failed: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "Name,ArtistID,Matched,Followed,Found,Owned,Added") {
			t.Errorf("CSV missing headers, got: %s", out)
		}
		if !strings.Contains(out, "air,sp-air,true,true,6,4,2") {
			t.Errorf("CSV missing air row, got: %s", out)
		}
	})

	t.Run("markdown escapes cells", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteOutcomes(&buf, outcomes, Markdown); err != nil {
			t.Fatalf("WriteOutcomes failed: %v", err)
		}
		if !strings.Contains(buf.String(), `Ghost \| Band`) {
			t.Errorf("expected escaped pipe, got %q", buf.String())
		}
	})
}

func TestWriteRunReport(t *testing.T) {
	run := models.NewSyncRun(7, "", true)
	run.Start(2)
	run.SetCounts(1, 2)
	run.Finish(errors.New("rate limited"))

	artists := []*models.RunArtist{
		models.NewRunArtist("run", 0, outcomes[0]),
		models.NewRunArtist("run", 1, outcomes[1]),
	}

	var buf bytes.Buffer
	if err := WriteRunReport(&buf, run, artists); err != nil {
		t.Fatalf("WriteRunReport failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Sync run #7",
		"**Status**: failed",
		"**Mode**: dry run",
		"**Artists**: 1 matched of 2",
		"**Albums added**: 2",
		"**Error**: rate limited",
		"| Air | yes | 6 | 4 | 2 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	if err := WriteRunReport(&buf, nil, nil); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil run, got %v", err)
	}
	if err := WriteRunReport(&th.FWriter{}, run, artists); err == nil {
		t.Error("expected write error")
	}
}

func TestSaveFile(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "exports", "artists.txt")
		err := SaveFile(path, func(w io.Writer) error {
			return WriteArtists(w, []string{"air"}, Text)
		})
		if err != nil {
			t.Fatalf("SaveFile failed: %v", err)
		}
		th.AssertFileExists(t, path)
		th.AssertDirExists(t, filepath.Dir(path))
		if got := th.MustReadFile(t, path); got != "air\n" {
			t.Errorf("unexpected file content %q", got)
		}
	})

	t.Run("relative path", func(t *testing.T) {
		dir := t.TempDir()
		wd := th.MustGetwd(t)
		th.MustChdir(t, dir)
		defer th.MustChdir(t, wd)

		if err := SaveFile("artists.csv", func(w io.Writer) error {
			return WriteArtists(w, []string{"air"}, CSV)
		}); err != nil {
			t.Fatalf("SaveFile failed: %v", err)
		}
		th.AssertFileExists(t, filepath.Join(dir, "artists.csv"))
	})

	t.Run("render error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.txt")
		boom := errors.New("boom")
		if err := SaveFile(path, func(io.Writer) error { return boom }); !errors.Is(err, boom) {
			t.Errorf("expected render error, got %v", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if err := SaveFile("", func(io.Writer) error { return nil }); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
