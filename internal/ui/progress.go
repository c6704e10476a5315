package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tagsync/internal/tasks"
)

const maxBarWidth = 60

// ProgressWatcher consumes a progress channel until it is closed.
type ProgressWatcher interface {
	Watch(progress <-chan tasks.ProgressUpdate)
	Wait()
}

var (
	_ ProgressWatcher = (*Reporter)(nil)
	_ ProgressWatcher = (*TeaReporter)(nil)
)

type progressMsg tasks.ProgressUpdate

type progressDoneMsg struct{}

// waitForUpdate reads the next update, or reports the end of the channel.
func waitForUpdate(updates <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return progressDoneMsg{}
		}
		return progressMsg(u)
	}
}

// ProgressModel shows the current step of a sync with a spinner and a progress bar.
// Finished lines (the ones [Reporter] would print) scroll above the view.
type ProgressModel struct {
	updates   <-chan tasks.ProgressUpdate
	lines     *Reporter
	cancel    context.CancelFunc
	spinner   spinner.Model
	bar       progress.Model
	current   string
	step      int
	total     int
	cancelled bool
	done      bool
}

// NewProgressModel creates a model reading from updates. cancel, when set, is called on ctrl+c.
func NewProgressModel(updates <-chan tasks.ProgressUpdate, verbose bool, cancel context.CancelFunc) *ProgressModel {
	return &ProgressModel{
		updates: updates,
		lines:   NewReporter(nil, verbose),
		cancel:  cancel,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.title.UnsetMarginBottom())),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth/2)),
		current: "Starting",
	}
}

// Init starts the spinner and the first channel read.
func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.updates))
}

// Update handles progress updates, animation frames, resizes and ctrl+c.
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && !m.cancelled {
			m.cancelled = true
			m.current = "Stopping after the current request"
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-16, 10), maxBarWidth)
		return m, nil

	case progressMsg:
		u := tasks.ProgressUpdate(msg)
		if !m.cancelled {
			m.current = u.Message
		}

		next := waitForUpdate(m.updates)
		if line := m.lines.Line(u); line != "" {
			next = tea.Sequence(tea.Println(line), next)
		}
		if u.Total <= 0 {
			return m, next
		}
		m.step, m.total = u.Step, u.Total
		return m, tea.Batch(next, m.bar.SetPercent(float64(u.Step)/float64(u.Total)))

	case progressDoneMsg:
		m.done = true
		return m, tea.Quit

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		if b, ok := bar.(progress.Model); ok {
			m.bar = b
		}
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders nothing once the channel is closed, so only the scrolled lines remain.
func (m *ProgressModel) View() string {
	if m.done {
		return ""
	}
	view := m.spinner.View() + " " + m.current + "\n"
	if m.total > 0 {
		view += m.bar.View() + Muted(fmt.Sprintf(" %d/%d", m.step, m.total)) + "\n"
	}
	return view
}

// TeaReporter drives a [ProgressModel] in a bubbletea program. If the program cannot start, the remaining
// updates are printed the way [Reporter] prints them.
type TeaReporter struct {
	w       io.Writer
	verbose bool
	cancel  context.CancelFunc
	opts    []tea.ProgramOption
	done    chan struct{}
	err     error
}

// NewTeaReporter creates a TeaReporter rendering to w.
func NewTeaReporter(w io.Writer, verbose bool, cancel context.CancelFunc, opts ...tea.ProgramOption) *TeaReporter {
	return &TeaReporter{w: w, verbose: verbose, cancel: cancel, opts: opts}
}

// Watch runs the program in the background until the channel is closed.
func (r *TeaReporter) Watch(updates <-chan tasks.ProgressUpdate) {
	r.done = make(chan struct{})
	model := NewProgressModel(updates, r.verbose, r.cancel)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithOutput(r.w)}, r.opts...)...)

	go func() {
		defer close(r.done)
		if _, err := program.Run(); err != nil {
			r.err = err
			fallback := NewReporter(r.w, r.verbose)
			for u := range updates {
				if line := fallback.Line(u); line != "" {
					fmt.Fprintln(r.w, line)
				}
			}
		}
	}()
}

// Wait blocks until the program has exited.
func (r *TeaReporter) Wait() {
	if r.done != nil {
		<-r.done
	}
}

// Err returns the error the program exited with, if any.
func (r *TeaReporter) Err() error {
	return r.err
}
