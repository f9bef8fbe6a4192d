package watchsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watchsync/pkg/catalogs"
	"github.com/agentstation/watchsync/pkg/errors"
)

func listFixtures() (*fakeGateway, *fakeListGateway) {
	mal := &fakeGateway{
		service: catalogs.ServiceMAL,
		entries: []catalogs.Entry{
			{Service: catalogs.ServiceMAL, NativeID: "20", Title: "Naruto", Year: 2002, Status: catalogs.StatusPlanned},
			{Service: catalogs.ServiceMAL, NativeID: "457", Title: "Mushishi", Year: 2005, Status: catalogs.StatusPlanned},
			{Service: catalogs.ServiceMAL, NativeID: "9999", Title: "Obscure OVA", Year: 1987, Status: catalogs.StatusPlanned},
			{Service: catalogs.ServiceMAL, NativeID: "269", Title: "Bleach", Year: 2004, Status: catalogs.StatusWatching},
		},
	}
	naruto := catalogs.Entry{Service: catalogs.ServiceTrakt, NativeID: "naruto", Title: "Naruto", Year: 2002}
	mushishi := catalogs.Entry{Service: catalogs.ServiceTrakt, NativeID: "mushishi", Title: "Mushishi", Year: 2005}
	trakt := &fakeListGateway{
		fakeGateway: &fakeGateway{
			service: catalogs.ServiceTrakt,
			entries: []catalogs.Entry{naruto, mushishi},
			search:  map[string][]catalogs.Entry{"Naruto": {naruto}, "Mushishi": {mushishi}},
			lists:   map[string][]catalogs.Entry{"anime": {naruto}},
		},
		names: map[string]string{"Anime": "anime"},
		added: map[string][]string{},
	}
	return mal, trakt
}

func TestPushList(t *testing.T) {
	mal, trakt := listFixtures()
	c := newTestClient(t, WithGateway(mal), WithGateway(trakt))

	result, err := c.PushList(context.Background(), ListOptions{Name: "Anime", Status: catalogs.StatusPlanned})
	require.NoError(t, err)
	assert.Equal(t, "anime", result.ListID)
	assert.False(t, result.Created)
	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, 1, result.Present)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, []string{"Obscure OVA"}, result.Unresolved)
	assert.Equal(t, []string{"mushishi"}, trakt.added["anime"])
	assert.Equal(t, `1 added to "Anime", 1 already present, 1 unresolved`, result.Summary())

	history, err := c.ListHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "anime", history[0].ListID)
}

func TestPushListCreatesList(t *testing.T) {
	mal, trakt := listFixtures()
	c := newTestClient(t, WithGateway(mal), WithGateway(trakt))

	result, err := c.PushList(context.Background(), ListOptions{Name: "Plan to Watch", Status: catalogs.StatusPlanned})
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, 0, result.Present)
	assert.ElementsMatch(t, []string{"naruto", "mushishi"}, trakt.added["new-list"])
}

func TestPushListRequiresListWriter(t *testing.T) {
	mal, trakt := listFixtures()
	c := newTestClient(t, WithGateway(mal), WithGateway(trakt.fakeGateway))

	_, err := c.PushList(context.Background(), ListOptions{Name: "Anime"})
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = c.PushList(context.Background(), ListOptions{})
	assert.True(t, errors.IsValidationError(err))
}
