// Package storetest runs a shared conformance suite against store backends.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync/pkg/errors"
	"github.com/agentstation/watchsync/pkg/store"
)

type payload struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

// Run exercises the store.Store contract against s.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, store.Mappings, "trakt-missing")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, store.Mappings, "mal-20", payload{"Naruto", 2002}, time.Hour))

		rec, err := s.Get(ctx, store.Mappings, "mal-20")
		require.NoError(t, err)
		assert.Equal(t, "mal-20", rec.Key)
		require.NotNil(t, rec.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(time.Hour), rec.ExpiresAt.Time, 5*time.Second)

		got, err := store.Load[payload](ctx, s, store.Mappings, "mal-20")
		require.NoError(t, err)
		assert.Equal(t, payload{"Naruto", 2002}, got)
	})

	t.Run("no ttl never expires", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, store.Tokens, "trakt", payload{Title: "token"}, 0))
		rec, err := s.Get(ctx, store.Tokens, "trakt")
		require.NoError(t, err)
		assert.Nil(t, rec.ExpiresAt)
	})

	t.Run("overwrite replaces", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, store.SyncHistory, "k", payload{Title: "a"}, 0))
		require.NoError(t, s.Set(ctx, store.SyncHistory, "k", payload{Title: "b"}, 0))
		got, err := store.Load[payload](ctx, s, store.SyncHistory, "k")
		require.NoError(t, err)
		assert.Equal(t, "b", got.Title)
	})

	t.Run("expired records are absent", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, store.TraktCache, "short", payload{Title: "gone"}, 1100*time.Millisecond))
		require.NoError(t, s.Set(ctx, store.TraktCache, "long", payload{Title: "kept"}, time.Hour))
		time.Sleep(1200 * time.Millisecond)

		_, err := s.Get(ctx, store.TraktCache, "short")
		assert.True(t, errors.IsNotFound(err))

		recs, err := s.GetAll(ctx, store.TraktCache)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "long", recs[0].Key)

		_, err = s.Purge(ctx)
		assert.NoError(t, err)
	})

	t.Run("get all is scoped and ordered", func(t *testing.T) {
		require.NoError(t, s.Clear(ctx, store.MALCache))
		for _, k := range []string{"c", "a", "b"} {
			require.NoError(t, s.Set(ctx, store.MALCache, k, payload{Title: k}, 0))
		}
		require.NoError(t, s.Set(ctx, store.IDsMoeCache, "a", payload{Title: "other"}, 0))

		all, err := store.LoadAll[payload](ctx, s, store.MALCache)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].Title, all[1].Title, all[2].Title})
	})

	t.Run("remove and clear", func(t *testing.T) {
		require.NoError(t, s.Remove(ctx, store.MALCache, "a"))
		require.NoError(t, s.Remove(ctx, store.MALCache, "does-not-exist"))
		recs, err := s.GetAll(ctx, store.MALCache)
		require.NoError(t, err)
		assert.Len(t, recs, 2)

		require.NoError(t, s.Clear(ctx, store.MALCache))
		recs, err = s.GetAll(ctx, store.MALCache)
		require.NoError(t, err)
		assert.Empty(t, recs)

		// Other stores are untouched.
		_, err = s.Get(ctx, store.IDsMoeCache, "a")
		assert.NoError(t, err)
	})
}
