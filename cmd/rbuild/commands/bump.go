package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/rbuild/internal/core/domain"
)

func (c *CLI) newBumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bump <file>",
		Short: "Increment the MAJOR.MINOR.PATCH version stored in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partFlag, _ := cmd.Flags().GetString("part")
			part, err := domain.ParseVersionPart(partFlag)
			if err != nil {
				return err
			}

			oldVersion, newVersion, err := c.app.Bump(args[0], part)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", oldVersion, newVersion)
			return nil
		},
	}
	cmd.Flags().StringP("part", "p", string(domain.PartPatch), "Version part to increment: major, minor or patch")
	return cmd
}
