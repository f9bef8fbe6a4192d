// Package app provides the application context and dependency management
// for the watchsync CLI. It centralizes configuration, logging and the lazily
// built store, token manager, gateways and client that commands share.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/watchsync"
	"github.com/agentstation/watchsync/cmd/application"
	"github.com/agentstation/watchsync/internal/auth"
	"github.com/agentstation/watchsync/internal/sources/idsmoe"
	"github.com/agentstation/watchsync/internal/sources/mal"
	"github.com/agentstation/watchsync/internal/sources/trakt"
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store"
	"github.com/agentstation/watchsync/pkg/store/driver"
	"github.com/agentstation/watchsync/pkg/throttle"
)

var _ application.Application = (*App)(nil)

// App represents the watchsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Lazily built, guarded by mu
	mu        sync.Mutex
	store     store.Store
	auth      *auth.Manager
	throttles *throttle.Registry
	trakt     *trakt.Gateway
	mal       *mal.Gateway
	client    watchsync.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version:   version,
		commit:    commit,
		date:      date,
		builtBy:   builtBy,
		throttles: throttle.NewRegistry(nil),
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value, empty when unset.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client returns the watchsync client, creating it lazily on first use.
func (a *App) Client(ctx context.Context) (watchsync.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	st, err := a.storeLocked(ctx)
	if err != nil {
		return nil, err
	}

	opts := []watchsync.Option{
		watchsync.WithStore(st),
		watchsync.WithGateway(a.malLocked(st)),
		watchsync.WithThresholds(a.config.Threshold, a.config.AltThreshold),
		watchsync.WithScores(a.config.Scores),
		watchsync.WithOperationDelay(a.config.OperationDelay),
		watchsync.WithMappingTTL(a.config.MappingTTL),
	}
	// Trakt rejects requests without an API key
	if a.config.Trakt.ClientID != "" {
		opts = append(opts, watchsync.WithGateway(a.traktLocked(st)))
	}
	if a.config.IDsMoe.APIKey != "" {
		opts = append(opts, watchsync.WithCrossReference(idsmoe.NewClient(idsmoe.Config{
			BaseURL:  a.config.IDsMoe.BaseURL,
			APIKey:   a.config.IDsMoe.APIKey,
			Throttle: a.throttles.For("idsmoe"),
			Cache:    st,
		})))
	}

	client, err := watchsync.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}

	a.logger.Debug().
		Str("store", a.config.Store.Driver).
		Bool("trakt", a.config.Trakt.ClientID != "").
		Bool("crossref", a.config.IDsMoe.APIKey != "").
		Msg("Client created")

	a.client = client
	return client, nil
}

// Auth returns the token manager, opening the store if needed.
func (a *App) Auth(ctx context.Context) (*auth.Manager, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, err := a.storeLocked(ctx)
	if err != nil {
		return nil, err
	}
	return a.authLocked(st), nil
}

// Remover returns the gateway that deletes entries of service.
// Only MyAnimeList supports removal.
func (a *App) Remover(ctx context.Context, service catalogs.Service) (application.Remover, error) {
	if service != catalogs.ServiceMAL {
		return nil, errors.NewConfigError("remove", service.DisplayName()+" does not support removing entries", nil)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	st, err := a.storeLocked(ctx)
	if err != nil {
		return nil, err
	}
	return a.malLocked(st), nil
}

// Shutdown releases the store. The client owns the store once it exists.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	switch {
	case a.client != nil:
		err = a.client.Close()
	case a.store != nil:
		err = a.store.Close()
	}
	a.client = nil
	a.store = nil
	return err
}

func (a *App) storeLocked(ctx context.Context) (store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	st, err := driver.Open(ctx, a.config.Store)
	if err != nil {
		return nil, errors.WrapResource("open", "store", a.config.Store.Driver, err)
	}
	a.store = st
	return st, nil
}

func (a *App) authLocked(st store.Store) *auth.Manager {
	if a.auth == nil {
		a.auth = auth.NewManager(st, map[catalogs.Service]auth.Credentials{
			catalogs.ServiceTrakt: a.config.Trakt.Credentials,
			catalogs.ServiceMAL:   a.config.MAL.Credentials,
		})
	}
	return a.auth
}

func (a *App) traktLocked(st store.Store) *trakt.Gateway {
	if a.trakt == nil {
		a.trakt = trakt.NewGateway(trakt.NewClient(trakt.Config{
			BaseURL:  a.config.Trakt.BaseURL,
			ClientID: a.config.Trakt.ClientID,
			Username: a.config.Trakt.Username,
			Tokens:   a.authLocked(st),
			Throttle: a.throttles.For("trakt"),
			Cache:    st,
		}))
	}
	return a.trakt
}

func (a *App) malLocked(st store.Store) *mal.Gateway {
	if a.mal == nil {
		a.mal = mal.NewGateway(mal.NewClient(mal.Config{
			BaseURL:  a.config.MAL.BaseURL,
			Tokens:   a.authLocked(st),
			Throttle: a.throttles.For("mal"),
			Cache:    st,
		}))
	}
	return a.mal
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithStore sets the store instead of opening the configured driver.
func WithStore(st store.Store) Option {
	return func(a *App) error {
		a.store = st
		return nil
	}
}

// WithClient sets a custom client (useful for testing).
func WithClient(client watchsync.Client) Option {
	return func(a *App) error {
		a.client = client
		return nil
	}
}
