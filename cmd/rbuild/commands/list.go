package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.trai.ch/rbuild/internal/app"
	"go.trai.ch/rbuild/internal/ui/output"
	"go.trai.ch/rbuild/internal/ui/style"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tasks of the taskfile",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := c.app.List()
			if err != nil {
				return err
			}
			renderList(cmd.OutOrStdout(), tasks)
			return nil
		},
	}
}

// newLipglossRenderer styles output for w with the CLI colour profile.
func newLipglossRenderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.ColorProfile())
	return r
}

// renderList prints one task per line in declaration order with aligned descriptions.
func renderList(w io.Writer, tasks []app.TaskSummary) {
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, "No tasks defined.")
		return
	}

	width := 0
	for _, t := range tasks {
		width = max(width, lipgloss.Width(t.Name))
	}

	r := newLipglossRenderer(w)
	name := style.TaskName(r, width+2)
	desc := style.Description(r)
	marker := style.Marker(r)

	for _, t := range tasks {
		var line strings.Builder
		line.WriteString("  ")
		line.WriteString(name.Render(t.Name))
		line.WriteString(desc.Render(t.Description))
		if t.Default {
			if t.Description != "" {
				line.WriteString(" ")
			}
			line.WriteString(marker.Render("(default)"))
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}
