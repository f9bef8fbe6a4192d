package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/watchsync/cmd/watchsync/cmd/auth"
	"github.com/agentstation/watchsync/cmd/watchsync/cmd/cache"
	"github.com/agentstation/watchsync/cmd/watchsync/cmd/history"
	"github.com/agentstation/watchsync/cmd/watchsync/cmd/lists"
	"github.com/agentstation/watchsync/cmd/watchsync/cmd/mal"
	"github.com/agentstation/watchsync/cmd/watchsync/cmd/mappings"
	"github.com/agentstation/watchsync/cmd/watchsync/cmd/sync"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(sync.NewCommand(a))
	rootCmd.AddCommand(history.NewCommand(a))
	rootCmd.AddCommand(lists.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(mappings.NewCommand(a))
	rootCmd.AddCommand(cache.NewCommand(a))
	rootCmd.AddCommand(auth.NewCommand(a))
	rootCmd.AddCommand(mal.NewCommand(a))

	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("watchsync %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
