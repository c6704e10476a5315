package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
)

// Touch creates an empty file at path, creating parent directories.
func Touch(t *testing.T, path string) {
	t.Helper()
	WriteBytes(t, path, nil)
}

// WriteBytes writes raw content to path, creating parent directories.
func WriteBytes(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteID3 writes a file holding only an ID3v2.4 tag with the given artist frame.
func WriteID3(t *testing.T, path, artist string) {
	t.Helper()
	writeTag(t, path, func(tag *id3v2.Tag) { tag.SetArtist(artist) })
}

// WriteID3Title writes an ID3v2.4 tag that has a title frame and no artist frame.
func WriteID3Title(t *testing.T, path, title string) {
	t.Helper()
	writeTag(t, path, func(tag *id3v2.Tag) { tag.SetTitle(title) })
}

func writeTag(t *testing.T, path string, set func(*id3v2.Tag)) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tag := id3v2.NewEmptyTag()
	tag.SetVersion(4)
	set(tag)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if _, err := tag.WriteTo(f); err != nil {
		t.Fatalf("write tag: %v", err)
	}
}
