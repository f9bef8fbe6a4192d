package hints

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync/pkg/errors"
)

func TestForError(t *testing.T) {
	assert.Nil(t, ForError(nil))
	assert.Nil(t, ForError(errors.New("boom")))

	h := ForError(errors.NewOperationError("update", "mal", "20", errors.NewAuthError("mal", "token refresh failed", nil)))
	require.NotNil(t, h)
	assert.Equal(t, "watchsync auth import mal --file token.json", h.Command)

	h = ForError(errors.NewConfigError("gateways", "Trakt is not configured", nil))
	require.NotNil(t, h)
	assert.Contains(t, h.Message, "TRAKT_CLIENT_ID")

	h = ForError(errors.NewUpstreamError("trakt", http.StatusTooManyRequests, "slow down"))
	require.NotNil(t, h)
	assert.Contains(t, h.Message, "wait a few minutes")

	h = ForError(&errors.UpstreamError{Service: "mal", StatusCode: http.StatusTooManyRequests, RetryAfter: 90 * time.Second})
	require.NotNil(t, h)
	assert.Contains(t, h.Message, "wait 1m30s")

	h = ForError(errors.NewUpstreamError("mal", http.StatusBadGateway, "bad gateway"))
	require.NotNil(t, h)
	assert.Contains(t, h.Message, "unavailable")
}

func TestString(t *testing.T) {
	h := New("Check tokens").WithCommand("watchsync auth status")
	assert.Equal(t, "Hint: Check tokens\n  Run: watchsync auth status", h.String())
}
