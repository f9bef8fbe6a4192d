// Package history provides the history command implementation.
package history

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/watchsync/cmd/application"
	"github.com/agentstation/watchsync/internal/cmd/output"
	"github.com/agentstation/watchsync/internal/cmd/table"
	"github.com/agentstation/watchsync/pkg/errors"
	pkgsync "github.com/agentstation/watchsync/pkg/sync"
)

// NewCommand creates the history command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		limit int
		lists bool
		run   string
	)

	cmd := &cobra.Command{
		Use:     "history",
		GroupID: "core",
		Short:   "Show past sync runs",
		Example: `  watchsync history                  # Recent runs
  watchsync history --run 20250101T120000.000000000Z
  watchsync history --lists          # Recent list pushes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := app.Client(ctx)
			if err != nil {
				return err
			}
			format := output.DetectFormat(app.OutputFormat())
			out := cmd.OutOrStdout()

			if lists {
				results, err := client.ListHistory(ctx)
				if err != nil {
					return err
				}
				if limit > 0 && len(results) > limit {
					results = results[:limit]
				}
				return output.Write(out, format, results, func() table.Data {
					rows := make([][]string, 0, len(results))
					for _, r := range results {
						rows = append(rows, []string{r.ID, r.ListName, r.Summary()})
					}
					return table.Data{
						Headers: []string{"Push", "List", "Result"},
						Rows:    rows,
						Empty:   "No list pushes recorded.",
					}
				})
			}

			results, err := client.History(ctx)
			if err != nil {
				return err
			}

			if run != "" {
				r, ok := find(results, run)
				if !ok {
					return errors.NewNotFoundError("run", run)
				}
				return output.Write(out, format, r, func() table.Data {
					return table.OutcomesToTableData(r.Outcomes)
				})
			}

			if limit > 0 && len(results) > limit {
				results = results[:limit]
			}
			return output.Write(out, format, results, func() table.Data {
				return table.HistoryToTableData(results)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries to show (0 for all)")
	cmd.Flags().BoolVar(&lists, "lists", false, "show list push history instead of sync runs")
	cmd.Flags().StringVar(&run, "run", "", "show the operations of one run")

	return cmd
}

func find(results []pkgsync.Result, id string) (pkgsync.Result, bool) {
	for _, r := range results {
		if r.ID == id {
			return r, true
		}
	}
	return pkgsync.Result{}, false
}
