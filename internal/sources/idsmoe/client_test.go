package idsmoe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store/memory"
)

func TestIDsUnmarshal(t *testing.T) {
	var ids IDs
	require.NoError(t, json.Unmarshal([]byte(`{"myanimelist":20,"trakt":"naruto","anilist":null,"kitsu":""}`), &ids))
	assert.Equal(t, IDs{"myanimelist": "20", "trakt": "naruto"}, ids)
}

func TestLookupBySource(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.Equal(t, "/ids/20", r.URL.Path)
		assert.Equal(t, PlatformMAL, r.URL.Query().Get("platform"))
		_, _ = w.Write([]byte(`{"myanimelist":20,"trakt":1606,"anilist":20}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "key", Cache: memory.New(time.Minute)})
	ctx := context.Background()

	ids, err := client.LookupBySource(ctx, PlatformMAL, "20")
	require.NoError(t, err)
	assert.Equal(t, "1606", ids[PlatformTrakt])

	_, err = client.LookupBySource(ctx, PlatformMAL, "20")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSearchByTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "naruto", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"title":"Naruto","year":2002,"ids":{"myanimelist":20}}]`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "key"})
	got, err := client.SearchByTitle(context.Background(), "naruto", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "20", got[0].IDs[PlatformMAL])
}

func TestDisabledWithoutKey(t *testing.T) {
	client := NewClient(Config{})
	assert.False(t, client.Enabled())

	_, err := client.LookupBySource(context.Background(), PlatformMAL, "20")
	assert.ErrorIs(t, err, errors.ErrNotImplemented)
}

func TestLookupUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "key"})
	_, err := client.LookupBySource(context.Background(), PlatformTrakt, "missing")
	assert.True(t, errors.IsNotFound(err))
}
