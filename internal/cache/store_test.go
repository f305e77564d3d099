package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/cache"
	"github.com/jonesrussell/north-cloud/spotlight/internal/memstore"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

type countingStore struct {
	*memstore.Store
	finds int
}

func (s *countingStore) FindItems(ctx context.Context, q models.ItemQuery) (models.ItemPage, error) {
	s.finds++
	return s.Store.FindItems(ctx, q)
}

func setup(t *testing.T) (*cache.Store, *countingStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingStore{Store: memstore.NewSeeded()}
	inner.AddItem(models.Item{ID: 1, ContentType: "post", Title: "Hello"})
	require.NoError(t, inner.EnsureTerm(context.Background(), spotlight.FeatureGroup, spotlight.FeaturedTerm, "Featured"))

	return cache.NewStore(inner, client, time.Minute, infralogger.NewNop()), inner, mr
}

func TestStore_CachesPages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, inner, mr := setup(t)
	q := models.ItemQuery{ContentTypes: []string{"post"}}

	first, err := store.FindItems(ctx, q)
	require.NoError(t, err)
	second, err := store.FindItems(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.finds)
	assert.Equal(t, first.Total, second.Total)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "Hello", second.Items[0].Title)

	members, err := mr.SMembers(cache.DefaultPrefix + ":index")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestStore_NoCacheBypasses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, inner, _ := setup(t)
	q := models.ItemQuery{NoCache: true}

	for i := 0; i < 3; i++ {
		_, err := store.FindItems(ctx, q)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.finds)
}

func TestStore_WritesInvalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, inner, mr := setup(t)
	q := spotlight.FeaturedQuery("post", 0)

	page, err := store.FindItems(ctx, q)
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	require.NoError(t, store.AddItemTerm(ctx, 1, spotlight.FeatureGroup, spotlight.FeaturedTerm))
	assert.False(t, mr.Exists(cache.DefaultPrefix+":index"))

	page, err = store.FindItems(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 2, inner.finds)
}

func TestStore_RedisDownFallsThrough(t *testing.T) {
	t.Parallel()

	store, inner, mr := setup(t)
	mr.Close()

	page, err := store.FindItems(context.Background(), models.ItemQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, inner.finds)
}

func TestStore_NilClient(t *testing.T) {
	t.Parallel()

	store := cache.NewStore(memstore.NewSeeded(), nil, 0, infralogger.NewNop())
	require.NoError(t, store.InvalidateAll(context.Background()))
	require.NoError(t, store.SetOption(context.Background(), "a", "b"))
}
