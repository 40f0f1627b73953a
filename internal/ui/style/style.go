// Package style holds the colours and icons shared by the logger, the renderer
// and the list output.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Accent = lipgloss.Color("#3DDC84")
	Muted  = lipgloss.Color("#6B7280")
	Red    = lipgloss.Color("#DC2626")
	Yellow = lipgloss.Color("#D97706")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
)

// TaskName renders a task name column of the given width.
func TaskName(r *lipgloss.Renderer, width int) lipgloss.Style {
	return r.NewStyle().Foreground(Accent).Bold(true).Width(width)
}

// Description renders secondary text.
func Description(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Foreground(Muted)
}

// Marker renders the default task marker.
func Marker(r *lipgloss.Renderer) lipgloss.Style {
	return r.NewStyle().Foreground(Yellow)
}
