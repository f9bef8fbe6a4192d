package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync/internal/auth"
	"github.com/agentstation/watchsync/internal/cmd/application"
	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/store/memory"
)

func newApp() (*application.Mock, *auth.Manager) {
	mgr := auth.NewManager(memory.New(0), map[catalogs.Service]auth.Credentials{
		catalogs.ServiceMAL: {ClientID: "mal-client"},
	})
	return &application.Mock{
		AuthFunc: func(context.Context) (*auth.Manager, error) { return mgr, nil },
	}, mgr
}

func execute(t *testing.T, app *application.Mock, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestImportFlagsAndStatus(t *testing.T) {
	app, mgr := newApp()

	_, errOut, err := execute(t, app, "import", "mal", "--access-token", "abc", "--refresh-token", "def", "--expires-in", "1h")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Stored MyAnimeList token")

	tok, err := mgr.Token(context.Background(), catalogs.ServiceMAL)
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.False(t, tok.Expiry.IsZero())

	out, _, err := execute(t, app, "status")
	require.NoError(t, err)
	var statuses []auth.Status
	require.NoError(t, json.Unmarshal([]byte(out), &statuses))
	require.Len(t, statuses, 2)
	assert.Equal(t, "missing", statuses[0].StateName)
	assert.Equal(t, "connected", statuses[1].StateName)
	assert.True(t, statuses[1].CanRefresh)
}

func TestImportFile(t *testing.T) {
	app, mgr := newApp()

	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":"xyz","refresh_token":"r","token_type":"Bearer","expires_in":3600}`), 0o600))

	_, _, err := execute(t, app, "import", "trakt", "--file", path)
	require.NoError(t, err)

	tok, err := mgr.Token(context.Background(), catalogs.ServiceTrakt)
	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "xyz", tok.AccessToken)
	assert.False(t, tok.Expiry.IsZero())
}

func TestImportRequiresToken(t *testing.T) {
	app, _ := newApp()

	_, _, err := execute(t, app, "import", "trakt")
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	app, mgr := newApp()

	_, _, err := execute(t, app, "import", "trakt", "--access-token", "abc")
	require.NoError(t, err)
	_, _, err = execute(t, app, "remove", "trakt")
	require.NoError(t, err)

	tok, err := mgr.Token(context.Background(), catalogs.ServiceTrakt)
	require.NoError(t, err)
	assert.Nil(t, tok)
}
