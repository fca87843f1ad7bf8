package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

type commandContext struct {
	verbose *bool
}

// logger writes text logs to stderr when --verbose is set and discards
// them otherwise.
func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	if c.verbose == nil || !*c.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return newTextLogger(cmd.ErrOrStderr())
}

func newTextLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newRootCommand() *cobra.Command {
	var verbose bool
	ctx := &commandContext{verbose: &verbose}

	rootCmd := &cobra.Command{
		Use:           "revealctl",
		Short:         "Validate, inspect and simulate birthday reveal experiences",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log session activity to stderr")

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newSimulateCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))

	return rootCmd
}
