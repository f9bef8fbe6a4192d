// Package auth provides the auth command implementation.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/agentstation/watchsync/cmd/application"
	"github.com/agentstation/watchsync/internal/auth"
	"github.com/agentstation/watchsync/internal/cmd/emoji"
	"github.com/agentstation/watchsync/internal/cmd/output"
	"github.com/agentstation/watchsync/internal/cmd/table"
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/logging"
)

// NewCommand creates the auth command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		GroupID: "management",
		Short:   "Manage Trakt and MyAnimeList tokens",
		Long: `Watchsync does not run the OAuth authorization flow. Obtain tokens with
your own client application, import them once, and watchsync keeps them
fresh with their refresh tokens (requires <service>.client_id and
<service>.client_secret in the configuration).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newStatusCommand(app))
	cmd.AddCommand(newImportCommand(app))
	cmd.AddCommand(newRemoveCommand(app))
	return cmd
}

func newStatusCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the token state of each service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			mgr, err := app.Auth(ctx)
			if err != nil {
				return err
			}
			statuses := []*auth.Status{
				mgr.Status(ctx, catalogs.ServiceTrakt),
				mgr.Status(ctx, catalogs.ServiceMAL),
			}
			return output.Write(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), statuses, func() table.Data {
				return table.AuthStatusToTableData(statuses)
			})
		},
	}
}

func newImportCommand(app application.Application) *cobra.Command {
	var (
		file         string
		accessToken  string
		refreshToken string
		expiresIn    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import <service>",
		Short: "Store a token obtained elsewhere",
		Example: `  watchsync auth import trakt --file token.json
  watchsync auth import mal --access-token "$MAL_TOKEN" --refresh-token "$MAL_REFRESH" --expires-in 720h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			service, err := catalogs.ParseService(args[0])
			if err != nil {
				return err
			}

			var tok *oauth2.Token
			if file != "" {
				tok, err = readToken(file)
				if err != nil {
					return err
				}
			} else {
				tok = &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken, TokenType: "Bearer"}
				if expiresIn > 0 {
					tok.Expiry = time.Now().Add(expiresIn)
				}
			}

			mgr, err := app.Auth(ctx)
			if err != nil {
				return err
			}
			if err := mgr.Save(ctx, service, tok); err != nil {
				return err
			}
			app.Logger().Debug().
				Str("service", string(service)).
				Str("access_token", logging.Token(tok.AccessToken)).
				Bool("refreshable", tok.RefreshToken != "").
				Msg("Imported token")

			st := mgr.Status(ctx, service)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Stored %s token: %s\n", emoji.Success, service.DisplayName(), st.Summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON token response (access_token, refresh_token, expires_in or expiry)")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "access token")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "refresh token")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "access token lifetime")
	cmd.MarkFlagsMutuallyExclusive("file", "access-token")
	cmd.MarkFlagsOneRequired("file", "access-token")

	return cmd
}

func newRemoveCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <service>",
		Short: "Delete the stored token of a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			service, err := catalogs.ParseService(args[0])
			if err != nil {
				return err
			}
			mgr, err := app.Auth(ctx)
			if err != nil {
				return err
			}
			if err := mgr.Remove(ctx, service); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Removed %s token\n", emoji.Success, service.DisplayName())
			return nil
		},
	}
}

// readToken parses a token endpoint response or a stored oauth2.Token.
func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if tok.Expiry.IsZero() && tok.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return &tok, nil
}
