package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/playperu/reveal/internal/experience"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check experience files and report every problem",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				exp, err := experience.Load(path)
				if err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s\n", path)
					for _, line := range problems(err) {
						fmt.Fprintf(out, "  - %s\n", line)
					}
					continue
				}
				fmt.Fprintf(out, "OK   %s (%s): %d lyrics, %d memories, %d questions\n",
					path, exp.Slug, exp.Lyrics.Len(), exp.Memories.Len(), len(exp.Gate.Questions))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d experience files invalid", failed, len(args))
			}
			return nil
		},
	}
}

// problems flattens joined errors into one line each.
func problems(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, problems(e)...)
		}
		return out
	}
	return strings.Split(err.Error(), "\n")
}
