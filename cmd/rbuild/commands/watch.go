package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/rbuild/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [task]",
		Short: "Run a task and run it again whenever files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target string
			if len(args) > 0 {
				target = args[0]
			}
			return c.app.Watch(cmd.Context(), target, app.RunOptions{})
		},
	}
}
