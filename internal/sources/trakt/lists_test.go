package trakt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureListCreatesMissing(t *testing.T) {
	f, client := newFakeTrakt(t)
	gw := NewGateway(client)

	id, created, err := gw.EnsureList(context.Background(), "Anime", "pushed from MyAnimeList")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "anime", id)
	assert.Equal(t, 2, f.count("/users/me/lists"), "one lookup and one create")
}

func TestAddToList(t *testing.T) {
	f, client := newFakeTrakt(t)
	gw := NewGateway(client)

	added, err := gw.AddToList(context.Background(), "anime", []string{"naruto", "4000"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	req := f.body(t, "/users/me/lists/anime/items", 0)
	require.Len(t, req.Shows, 2)
	assert.Equal(t, "naruto", req.Shows[0].IDs.Slug)
	assert.Equal(t, 4000, req.Shows[1].IDs.Trakt)

	added, err = gw.AddToList(context.Background(), "anime", nil)
	require.NoError(t, err)
	assert.Zero(t, added)
}
