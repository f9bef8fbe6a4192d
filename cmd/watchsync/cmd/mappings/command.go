// Package mappings provides the mappings command implementation.
package mappings

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/watchsync/cmd/application"
	"github.com/agentstation/watchsync/internal/cmd/emoji"
	"github.com/agentstation/watchsync/internal/cmd/output"
	"github.com/agentstation/watchsync/internal/cmd/table"
	"github.com/agentstation/watchsync/internal/matcher"
	"github.com/agentstation/watchsync/pkg/catalogs"
)

// NewCommand creates the mappings command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mappings",
		Aliases: []string{"mapping"},
		GroupID: "management",
		Short:   "Inspect and manage remembered title matches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newRemoveCommand(app))
	cmd.AddCommand(newClearCommand(app))
	return cmd
}

func newListCommand(app application.Application) *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List live mappings",
		Example: `  watchsync mappings list
  watchsync mappings list --match "naruto*"
  watchsync mappings list -o yaml > mappings.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := app.Client(ctx)
			if err != nil {
				return err
			}
			mappings, err := client.Mappings(ctx)
			if err != nil {
				return err
			}

			if match != "" {
				filter, err := matcher.NewFilter(matcher.Auto, match)
				if err != nil {
					return err
				}
				filtered := mappings[:0]
				for _, m := range mappings {
					if filter.Match(m.Title) {
						filtered = append(filtered, m)
					}
				}
				mappings = filtered
			}

			return output.Write(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), mappings, func() table.Data {
				return table.MappingsToTableData(mappings)
			})
		},
	}
	cmd.Flags().StringVarP(&match, "match", "m", "", "only show titles matching a glob or regex")
	return cmd
}

func newRemoveCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <service> <id>",
		Aliases: []string{"rm"},
		Short:   "Forget the mapping of one title so the next sync matches it again",
		Example: `  watchsync mappings remove trakt naruto
  watchsync mappings remove mal 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			service, err := catalogs.ParseService(args[0])
			if err != nil {
				return err
			}
			client, err := app.Client(ctx)
			if err != nil {
				return err
			}
			if err := client.RemoveMapping(ctx, service, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Removed mapping for %s %s\n", emoji.Success, service.DisplayName(), args[1])
			return nil
		},
	}
}

func newClearCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := app.Client(ctx)
			if err != nil {
				return err
			}
			if err := client.ClearMappings(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Mappings cleared\n", emoji.Success)
			return nil
		},
	}
}
