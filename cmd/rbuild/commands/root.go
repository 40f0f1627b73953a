// Package commands implements the CLI commands for the rbuild task runner.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/rbuild/internal/app"
	"go.trai.ch/rbuild/internal/build"
	"go.trai.ch/rbuild/internal/core/domain"
)

// exitCodeHelp documents the exit status. A failing command's own status is passed
// through, so it can coincide with the codes rbuild reserves.
const exitCodeHelp = `Exit status:
  0    success
  N    a command failed with status N (1 if it was killed by a signal)
  3    unknown task
  4    dependency cycle
  130  interrupted
  1    any other error

A command that itself exits with 3, 4 or 130 is reported with that same status.`

// CLI represents the command line interface for rbuild.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Configure(o app.Overrides) error
	Run(ctx context.Context, target string, opts app.RunOptions) (*domain.Run, error)
	Watch(ctx context.Context, target string, opts app.RunOptions) error
	List() ([]app.TaskSummary, error)
	Describe(name string) (app.TaskDetail, error)
	Bump(path string, part domain.VersionPart) (domain.Version, domain.Version, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:   "rbuild [task]",
		Short: "Run named tasks and their dependencies",
		Long: "rbuild runs a task from rbuild.yaml after all of its dependencies.\n" +
			"Without a task name the default task is run.\n\n" +
			exitCodeHelp,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           build.Version,
		PersistentPreRunE: c.configure,
		RunE:              c.runTask,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("file", "f", "", "Path to the taskfile (default: search rbuild.yaml upwards)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: pretty or json")
	rootCmd.PersistentFlags().String("tty", "", "Attach commands to a terminal: auto, always or never")
	rootCmd.Flags().Bool("dry-run", false, "Print the plan without running any command")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newDescribeCmd())
	rootCmd.AddCommand(c.newBumpCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) configure(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")
	logFormat, _ := cmd.Flags().GetString("log-format")
	tty, _ := cmd.Flags().GetString("tty")

	return c.app.Configure(app.Overrides{
		File:      file,
		LogFormat: domain.LogFormat(logFormat),
		TTY:       domain.TTYMode(tty),
	})
}

func (c *CLI) runTask(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) > 0 {
		target = args[0]
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	_, err := c.app.Run(cmd.Context(), target, app.RunOptions{DryRun: dryRun})
	return err
}
