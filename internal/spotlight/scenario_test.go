package spotlight_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

func articleLegacyQuery() models.ItemQuery {
	return models.ItemQuery{
		ContentTypes: []string{"article"},
		Meta:         []models.MetaClause{{Key: spotlight.LegacyMetaKey}},
	}
}

func TestUpgradeThenLegacyQuery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTrackingStore()
	store.configure(t, "article")
	store.AddItem(models.Item{ID: 42, ContentType: "article", Title: "Answer"})
	store.AddItem(models.Item{ID: 43, ContentType: "article", Title: "Other"})
	require.NoError(t, store.SetMeta(ctx, 42, spotlight.LegacyMetaKey, "1"))

	c := newCoordinator(store)

	before, err := c.Query(ctx, articleLegacyQuery())
	require.NoError(t, err)
	require.Len(t, before.Items, 1, "before the upgrade the legacy query reads the flag")
	assert.Equal(t, int64(42), before.Items[0].ID)

	require.NoError(t, c.Init(ctx))

	assert.True(t, featured(t, store, 42))
	assert.False(t, flagged(t, store, 42))
	assert.False(t, featured(t, store, 43))
	v, ok := marker(t, store)
	require.True(t, ok)
	assert.Equal(t, spotlight.CurrentVersion, v)

	rewritten := c.RewriteQuery(ctx, articleLegacyQuery())
	assert.Empty(t, rewritten.Meta)
	assert.Equal(t, []models.TaxClause{{
		Taxonomy: spotlight.FeatureGroup,
		Field:    models.FieldSlug,
		Terms:    []string{spotlight.FeaturedTerm},
	}}, rewritten.Tax)

	after, err := c.Query(ctx, articleLegacyQuery())
	require.NoError(t, err)
	require.Len(t, after.Items, 1)
	assert.Equal(t, int64(42), after.Items[0].ID)
}

// Every flagged item is featured after the upgrade, so the legacy query
// answers the same before and after.
func TestLegacyQueryEquivalence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTrackingStore()
	store.configure(t, "article")
	store.addFlagged(t, 1, 30, "article")
	for id := int64(31); id <= 40; id++ {
		store.AddItem(models.Item{ID: id, ContentType: "article"})
	}

	c := newCoordinator(store, spotlight.WithPageSize(7))

	ids := func(page models.ItemPage) []int64 {
		out := make([]int64, 0, len(page.Items))
		for _, item := range page.Items {
			out = append(out, item.ID)
		}
		return out
	}

	before, err := c.Query(ctx, articleLegacyQuery())
	require.NoError(t, err)

	require.NoError(t, c.Init(ctx))

	after, err := c.Query(ctx, articleLegacyQuery())
	require.NoError(t, err)
	assert.ElementsMatch(t, ids(before), ids(after))
	assert.Len(t, after.Items, 30)
}
