// Package application provides the application interface for watchsync commands.
//
// Commands accept this interface rather than the concrete App type, so they
// can be tested with internal/cmd/application.Mock.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client(cmd.Context())
//	            if err != nil {
//	                return err
//	            }
//	            // ... use client
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/watchsync"
	"github.com/agentstation/watchsync/internal/auth"
	"github.com/agentstation/watchsync/pkg/catalogs"
)

// Application provides what commands need from the app.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the watchsync client, creating it on first use.
	Client(ctx context.Context) (watchsync.Client, error)

	// Auth returns the token manager.
	Auth(ctx context.Context) (*auth.Manager, error)

	// Remover returns the gateway able to delete entries of service.
	Remover(ctx context.Context, service catalogs.Service) (Remover, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// Version returns the application version string.
	Version() string
}

// Remover deletes an entry from a catalog.
type Remover interface {
	Remove(ctx context.Context, id string) error
}
