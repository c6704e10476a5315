package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#1DB954", "#04B575", "#E22134", "#FFA500", "#626262")

// Palette is a small stylesheet of named [lipgloss.Style] values for command output.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
}

// NewPalette builds a Palette from foreground colors for titles, successes, errors, warnings and
// secondary text.
func NewPalette(title, ok, err, warn, muted string) *Palette {
	return &Palette{
		title: NewBold(title).MarginBottom(1),
		ok:    NewBold(ok),
		err:   NewBold(err),
		warn:  NewStyle(warn),
		muted: NewEm(muted),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func Title(s string) string { return styles.title.Render(s) }
func OK(s string) string    { return styles.ok.Render(s) }
func Err(s string) string   { return styles.err.Render(s) }
func Warn(s string) string  { return styles.warn.Render(s) }
func Muted(s string) string { return styles.muted.Render(s) }
