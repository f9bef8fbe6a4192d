// Package mal provides MyAnimeList maintenance commands.
package mal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/watchsync/cmd/application"
	"github.com/agentstation/watchsync/internal/cmd/emoji"
	"github.com/agentstation/watchsync/pkg/catalogs"
)

// NewCommand creates the mal command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mal",
		GroupID: "management",
		Short:   "MyAnimeList maintenance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "remove <anime-id>...",
		Aliases: []string{"rm"},
		Short:   "Remove entries from your MyAnimeList list",
		Example: `  watchsync mal remove 20
  watchsync mal remove 20 1735`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			remover, err := app.Remover(ctx, catalogs.ServiceMAL)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := remover.Remove(ctx, id); err != nil {
					return err
				}
				app.Logger().Debug().Str("id", id).Msg("Removed MyAnimeList entry")
				fmt.Fprintf(cmd.ErrOrStderr(), "%s Removed %s\n", emoji.Success, id)
			}
			return nil
		},
	})

	return cmd
}
