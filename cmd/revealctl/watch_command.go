package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/playperu/reveal/internal/relay"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var redisURL string

	cmd := &cobra.Command{
		Use:   "watch SLUG",
		Short: "Follow a live session through the Redis relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if redisURL == "" {
				return fmt.Errorf("no redis url: pass --redis or set REDIS_URL")
			}
			rdb, err := relay.Open(cmd.Context(), redisURL)
			if err != nil {
				return err
			}
			defer rdb.Close()

			slug := args[0]
			ctx.logger(cmd).Info("watching", "channel", relay.Channel(slug))
			out := cmd.OutOrStdout()
			return relay.Subscribe(cmd.Context(), rdb, slug, func(m relay.Message) error {
				_, err := fmt.Fprintf(out, "%5d  %-20s %s\n", m.Seq, m.Type, m.Data)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis", os.Getenv("REDIS_URL"), "Redis URL the server relays signals to")
	return cmd
}
