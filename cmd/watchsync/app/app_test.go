package app

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync"
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/constants"
	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store/driver"
)

func testConfig() *Config {
	return &Config{
		Store:          driver.Config{Driver: driver.Memory},
		OperationDelay: constants.OperationDelay,
		MappingTTL:     constants.MappingTTL,
		Threshold:      constants.MatchThreshold,
		AltThreshold:   constants.AlternativeMatchThreshold,
		LogFormat:      "json",
		LogOutput:      "discard",
	}
}

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	resetViper(t)
	t.Setenv("HOME", t.TempDir())

	logger := zerolog.Nop()
	opts = append([]Option{WithConfig(testConfig()), WithLogger(&logger)}, opts...)
	app, err := New("1.0.0", "abc123", "2025-01-01", "test", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

func TestNew(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, "1.0.0", app.Version())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Config())
	assert.Empty(t, app.OutputFormat())
}

func TestClientSingleton(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	clients := make([]watchsync.Client, goroutines)
	errs := make([]error, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			clients[idx], errs[idx] = app.Client(ctx)
		}(i)
	}
	wg.Wait()

	for i := range goroutines {
		require.NoError(t, errs[i])
		assert.Same(t, clients[0], clients[i])
	}
}

func TestClientWithoutTraktKey(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	client, err := app.Client(ctx)
	require.NoError(t, err)

	_, err = client.Analyze(ctx, catalogs.TraktToMAL)
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "Trakt is not configured")
}

func TestAuthSharesStore(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	mgr1, err := app.Auth(ctx)
	require.NoError(t, err)
	mgr2, err := app.Auth(ctx)
	require.NoError(t, err)
	assert.Same(t, mgr1, mgr2)
}

func TestRemover(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	remover, err := app.Remover(ctx, catalogs.ServiceMAL)
	require.NoError(t, err)
	assert.NotNil(t, remover)

	_, err = app.Remover(ctx, catalogs.ServiceTrakt)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestUnknownStoreDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Driver = "etcd"
	app := newTestApp(t, WithConfig(cfg))

	_, err := app.Client(context.Background())
	assert.Error(t, err)
}

func TestExecuteVersion(t *testing.T) {
	app := newTestApp(t)

	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "watchsync 1.0.0")
}

func TestExecuteRejectsFormat(t *testing.T) {
	app := newTestApp(t)

	err := app.Execute(context.Background(), []string{"version", "--format", "csv"})
	assert.Error(t, err)
}

func TestExecuteRegistersCommands(t *testing.T) {
	app := newTestApp(t)

	root := app.createRootCommand()
	for _, name := range []string{"sync", "history", "lists", "mappings", "cache", "auth", "mal", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
