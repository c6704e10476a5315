// Package ui styles terminal output with lipgloss.
//
// [Reporter] drains the progress channel of a sync or harvest and prints one styled line per update.
// On a terminal, [TeaReporter] runs a bubbletea program instead: a spinner and progress bar for the
// current step, with the same lines scrolling above it.
// [RenderSyncResult] and [RenderHarvestResult] produce the summaries printed when a run ends.
// Styling degrades to plain text when stdout is not a terminal.
package ui
