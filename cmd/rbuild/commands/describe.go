package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/rbuild/internal/app"
	"go.trai.ch/rbuild/internal/ui/style"
)

func (c *CLI) newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <task>",
		Short: "Show the description, dependencies and commands of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := c.app.Describe(args[0])
			if err != nil {
				return err
			}
			renderDetail(cmd.OutOrStdout(), detail)
			return nil
		},
	}
}

func renderDetail(w io.Writer, d app.TaskDetail) {
	r := newLipglossRenderer(w)
	heading := r.NewStyle().Bold(true)
	muted := style.Description(r)

	_, _ = fmt.Fprintln(w, style.TaskName(r, 0).Render(d.Name))
	if d.Description != "" {
		_, _ = fmt.Fprintln(w, "  "+d.Description)
	}

	field := func(label, value string) {
		_, _ = fmt.Fprintf(w, "\n%s %s\n", heading.Render(label+":"), value)
	}

	field("Directory", d.Dir)

	deps := muted.Render("none")
	if len(d.Dependencies) > 0 {
		deps = strings.Join(d.Dependencies, ", ")
	}
	field("Depends on", deps)

	if len(d.Plan) > 0 {
		field("Plan", strings.Join(d.Plan, " "+style.Arrow+" "))
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", heading.Render("Commands:"))
	if len(d.Commands) == 0 {
		_, _ = fmt.Fprintln(w, "  "+muted.Render("none"))
	}
	for i, cmd := range d.Commands {
		_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, cmd)
	}
}
