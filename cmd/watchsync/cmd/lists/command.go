// Package lists provides the lists command implementation.
package lists

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/watchsync"
	"github.com/agentstation/watchsync/cmd/application"
	"github.com/agentstation/watchsync/internal/cmd/emoji"
	"github.com/agentstation/watchsync/internal/cmd/output"
	"github.com/agentstation/watchsync/internal/cmd/table"
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/errors"
)

// NewCommand creates the lists command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lists",
		GroupID: "core",
		Short:   "Manage Trakt custom lists",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newPushCommand(app))
	return cmd
}

func newPushCommand(app application.Application) *cobra.Command {
	var name, description, status string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Add MyAnimeList entries to a Trakt custom list",
		Long: `Push resolves your MyAnimeList entries to Trakt shows and adds the
ones not already present to the named Trakt list. The list is created when
it does not exist. Entries without a Trakt match are reported.`,
		Example: `  watchsync lists push --name "Anime"
  watchsync lists push --name "Anime backlog" --status planned`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			opts := watchsync.ListOptions{Name: name, Description: description}
			if status != "" {
				s, ok := catalogs.ParseStatus(status)
				if !ok {
					return errors.NewValidationError("status", status, "must be one of: watching, completed, planned, on_hold, dropped")
				}
				opts.Status = s
			}

			client, err := app.Client(ctx)
			if err != nil {
				return err
			}

			result, err := client.PushList(ctx, opts)
			if result == nil {
				return err
			}

			symbol := emoji.Success
			if err != nil {
				symbol = emoji.Error
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", symbol, result.Summary())

			if werr := output.Write(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), result, func() table.Data {
				return table.ListResultToTableData(result)
			}); werr != nil {
				return werr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Trakt list name (required)")
	cmd.Flags().StringVar(&description, "description", "Synced from MyAnimeList by watchsync", "description used when the list is created")
	cmd.Flags().StringVar(&status, "status", "", "only push MyAnimeList entries with this status")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
