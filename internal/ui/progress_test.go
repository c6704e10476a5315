package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tagsync/internal/models"
	"github.com/desertthunder/tagsync/internal/tasks"
)

func TestWaitForUpdate(t *testing.T) {
	updates := make(chan tasks.ProgressUpdate, 1)
	updates <- tasks.ProgressUpdate{Phase: tasks.Resolve, Message: "Searching"}

	msg := waitForUpdate(updates)()
	if u, ok := msg.(progressMsg); !ok || u.Message != "Searching" {
		t.Errorf("expected progress message, got %#v", msg)
	}

	close(updates)
	if _, ok := waitForUpdate(updates)().(progressDoneMsg); !ok {
		t.Error("expected done message after close")
	}
}

func TestProgressModel(t *testing.T) {
	t.Run("tracks the current step", func(t *testing.T) {
		m := NewProgressModel(nil, false, nil)
		m.Update(progressMsg{Phase: tasks.Resolve, Step: 2, Total: 5, Message: "[2/5] Searching for Air"})

		view := m.View()
		if !strings.Contains(view, "Searching for Air") || !strings.Contains(view, "2/5") {
			t.Errorf("unexpected view %q", view)
		}
		if m.step != 2 || m.total != 5 {
			t.Errorf("expected step 2 of 5, got %d/%d", m.step, m.total)
		}
	})

	t.Run("harvest updates leave the bar alone", func(t *testing.T) {
		m := NewProgressModel(nil, false, nil)
		m.Update(progressMsg{Phase: tasks.Harvest, Step: 1, Message: "Reading playlist: Mine"})

		if m.total != 0 || strings.Contains(m.View(), "/") {
			t.Errorf("unexpected view %q", m.View())
		}
	})

	t.Run("ctrl+c cancels once", func(t *testing.T) {
		calls := 0
		m := NewProgressModel(nil, false, func() { calls++ })

		m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if calls != 1 {
			t.Errorf("expected one cancel, got %d", calls)
		}

		m.Update(progressMsg{Phase: tasks.Resolve, Step: 3, Total: 5, Message: "next"})
		if !strings.Contains(m.View(), "Stopping") {
			t.Errorf("expected stopping notice, got %q", m.View())
		}
	})

	t.Run("channel close quits", func(t *testing.T) {
		m := NewProgressModel(nil, false, nil)
		_, cmd := m.Update(progressDoneMsg{})
		if cmd == nil {
			t.Fatal("expected a quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if m.View() != "" {
			t.Errorf("expected empty view after done, got %q", m.View())
		}
	})

	t.Run("resize bounds the bar", func(t *testing.T) {
		m := NewProgressModel(nil, false, nil)
		m.Update(tea.WindowSizeMsg{Width: 300, Height: 40})
		if m.bar.Width != maxBarWidth {
			t.Errorf("expected width %d, got %d", maxBarWidth, m.bar.Width)
		}
		m.Update(tea.WindowSizeMsg{Width: 12, Height: 40})
		if m.bar.Width != 10 {
			t.Errorf("expected minimum width 10, got %d", m.bar.Width)
		}
	})
}

func TestTeaReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewTeaReporter(&buf, false, nil, tea.WithInput(nil))
	progress := make(chan tasks.ProgressUpdate, 4)

	r.Watch(progress)
	outcome := models.ArtistOutcome{Name: "air", Matched: true, AlbumsFound: 2, AlbumsAdded: 2}
	progress <- tasks.ProgressUpdate{Phase: tasks.SaveAlbums, Step: 1, Total: 1, Message: "[1/1] Air: 2 found, 0 owned, 2 added", Data: outcome}
	close(progress)

	waited := make(chan struct{})
	go func() {
		r.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("reporter did not exit after the channel closed")
	}

	if err := r.Err(); err != nil {
		t.Fatalf("program failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Air: 2 found, 0 owned, 2 added") {
		t.Errorf("expected the finished line to be printed, got %q", buf.String())
	}
}
