// Package cache provides the cache command implementation.
package cache

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/watchsync/cmd/application"
	"github.com/agentstation/watchsync/internal/cmd/emoji"
)

// NewCommand creates the cache command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		GroupID: "management",
		Short:   "Manage cached catalog responses",
		Long: `Catalog list and detail responses are cached for an hour so repeated
runs do not spend rate limit. Clear the cache to force fresh reads.
Mappings are kept; use 'watchsync mappings clear' to forget them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := app.Client(ctx)
			if err != nil {
				return err
			}
			if err := client.ClearCache(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Cache cleared\n", emoji.Success)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired responses and mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := app.Client(ctx)
			if err != nil {
				return err
			}
			n, err := client.PurgeExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Purged %d expired records\n", emoji.Success, n)
			return nil
		},
	})

	return cmd
}
