package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Run a task after its dependencies",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.runTask,
	}
	cmd.Flags().Bool("dry-run", false, "Print the plan without running any command")
	return cmd
}
