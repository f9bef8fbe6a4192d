// Package sync provides the sync command implementation.
package sync

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/watchsync"
	"github.com/agentstation/watchsync/cmd/application"
	"github.com/agentstation/watchsync/internal/cmd/emoji"
	"github.com/agentstation/watchsync/internal/cmd/output"
	"github.com/agentstation/watchsync/internal/cmd/table"
	"github.com/agentstation/watchsync/pkg/catalogs"
	pkgsync "github.com/agentstation/watchsync/pkg/sync"
)

// Flags holds the sync command flags.
type Flags struct {
	Direction   string
	Source      string
	DryRun      bool
	AutoApprove bool
}

func addFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}
	cmd.Flags().StringVarP(&flags.Direction, "direction", "d", string(catalogs.TraktToMAL), "sync direction: trakt-to-mal, mal-to-trakt")
	cmd.Flags().StringVarP(&flags.Source, "source", "s", string(catalogs.ListAll), "source list: all, watched, watchlist, list:<id>, status:<status>")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "show the operations without applying them")
	cmd.Flags().BoolVarP(&flags.AutoApprove, "yes", "y", false, "apply without asking for confirmation")
	return flags
}

// NewCommand creates the sync command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "sync",
		GroupID: "core",
		Short:   "Sync watch state from one catalog to the other",
		Long: `Sync reads both catalogs, matches every source title to the target
catalog and applies the status, progress and score changes needed to bring
the target in line with the source.

Titles are matched by remembered mapping first, then by ids.moe cross
reference (when an API key is configured), then by title similarity and
release year. Titles without a match are skipped and reported.

A failed operation does not stop the run. Interrupting a run stops it after
the current operation and records what was applied.`,
		Example: `  watchsync sync                                 # Trakt to MyAnimeList
  watchsync sync -d mal-to-trakt                 # MyAnimeList to Trakt
  watchsync sync -s watchlist --dry-run          # Preview the Trakt watchlist
  watchsync sync -d mal-to-trakt -s status:completed -y`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags = addFlags(cmd)

	return cmd
}

// Execute analyzes a run, prints the plan and applies it once confirmed.
func Execute(ctx context.Context, app application.Application, flags *Flags, in io.Reader, out, errOut io.Writer) error {
	dir, err := catalogs.ParseDirection(flags.Direction)
	if err != nil {
		return err
	}
	source, err := catalogs.ParseSourceList(flags.Source)
	if err != nil {
		return err
	}

	client, err := app.Client(ctx)
	if err != nil {
		return err
	}

	logger := app.Logger()
	logger.Info().
		Str("direction", dir.String()).
		Str("source", source.String()).
		Msg("Analyzing catalogs")

	plan, err := client.Analyze(ctx, dir, watchsync.WithSource(source))
	if err != nil {
		return err
	}

	format := output.DetectFormat(app.OutputFormat())
	fmt.Fprintf(errOut, "%s %s to %s: %d source entries, %d unresolved\n",
		emoji.Info, dir.Source().DisplayName(), dir.Target().DisplayName(), plan.SourceCount, plan.Unresolved())
	fmt.Fprintf(errOut, "%s Plan: %s\n", emoji.Info, plan.Summary)

	if flags.DryRun || !plan.Summary.HasChanges() {
		return output.Write(out, format, plan, func() table.Data {
			return table.OperationsToTableData(plan.Operations)
		})
	}

	if format == output.FormatTable {
		if err := output.Write(out, format, plan, func() table.Data {
			return table.OperationsToTableData(plan.Operations)
		}); err != nil {
			return err
		}
	}

	if !flags.AutoApprove {
		ok, err := confirm(in, errOut, fmt.Sprintf("Apply %d changes to %s?", plan.Summary.Adds+plan.Summary.Updates, dir.Target().DisplayName()))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(errOut, "Sync cancelled")
			return nil
		}
	}

	result, runErr := client.Execute(ctx, plan, progressPrinter(errOut))
	if result == nil {
		return runErr
	}

	summary := emoji.Success
	if result.Aborted || result.Failed > 0 {
		summary = emoji.Warning
	}
	fmt.Fprintf(errOut, "%s %s (%s)\n", summary, result.Summary(), result.Duration.Round(time.Millisecond))

	if format == output.FormatTable {
		if failures := result.Failures(); len(failures) > 0 {
			if err := output.Write(out, format, failures, func() table.Data {
				return table.OutcomesToTableData(failures)
			}); err != nil {
				return err
			}
		}
	} else if err := output.Write(out, format, result, nil); err != nil {
		return err
	}
	return runErr
}

// progressPrinter reports every applied or failed operation.
func progressPrinter(w io.Writer) func(pkgsync.Progress) {
	return func(p pkgsync.Progress) {
		if p.Outcome.Status == pkgsync.OutcomeSkipped {
			return
		}
		line := fmt.Sprintf("[%d/%d] %s %s %q", p.Completed, p.Total, emoji.ForOutcome(p.Outcome.Status), p.Outcome.Type, p.Outcome.Title)
		if p.Outcome.Error != "" {
			line += ": " + p.Outcome.Error
		}
		fmt.Fprintln(w, line)
	}
}

func confirm(in io.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(w, "%s (y/N): ", prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
