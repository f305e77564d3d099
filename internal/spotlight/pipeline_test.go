package spotlight_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

func TestPipeline_OrdersByPhase(t *testing.T) {
	t.Parallel()

	var order []string
	stage := func(name string, phase spotlight.Phase) spotlight.Stage {
		return spotlight.Stage{Name: name, Phase: phase, Transform: func(_ context.Context, q models.ItemQuery) models.ItemQuery {
			order = append(order, name)
			return q
		}}
	}

	p := spotlight.NewPipeline()
	p.Add(stage("rewrite", spotlight.PhaseRewrite))
	p.Add(stage("build-a", spotlight.PhaseBuild))
	p.Add(stage("refine", spotlight.PhaseRefine))
	p.Add(stage("build-b", spotlight.PhaseBuild))

	p.Run(context.Background(), models.ItemQuery{})

	want := []string{"build-a", "build-b", "refine", "rewrite"}
	assert.Equal(t, want, order)
	assert.Equal(t, want, p.Names())
}

func TestCoordinator_ShimRunsAfterBuildStages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTrackingStore()
	require.NoError(t, store.SetOption(ctx, spotlight.VersionOption, spotlight.CurrentVersion))

	// A build stage that injects a legacy clause, as an old integration might.
	legacyFilter := spotlight.Stage{
		Name:  "legacy-integration",
		Phase: spotlight.PhaseBuild,
		Transform: func(_ context.Context, q models.ItemQuery) models.ItemQuery {
			q.Meta = append(q.Meta, models.MetaClause{Key: spotlight.LegacyMetaKey})
			return q
		},
	}
	c := newCoordinator(store, spotlight.WithStage(legacyFilter))

	assert.Equal(t, []string{"term-query-vars", "legacy-integration", "legacy-meta-shim"}, c.Pipeline().Names())

	got := c.RewriteQuery(ctx, models.ItemQuery{ContentTypes: []string{"article"}})
	want := models.ItemQuery{
		ContentTypes: []string{"article"},
		Tax:          []models.TaxClause{featuredTaxClause()},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("pipeline result mismatch (-want +got):\n%s", diff)
	}
}

func TestCoordinator_TermQueryVar(t *testing.T) {
	t.Parallel()

	c := newCoordinator(newTrackingStore())

	got := c.RewriteQuery(context.Background(), models.ItemQuery{
		ContentTypes: []string{"article"},
		QueryVars:    map[string]string{spotlight.FeatureGroup: spotlight.FeaturedTerm},
	})

	want := models.ItemQuery{
		ContentTypes: []string{"article"},
		Tax:          []models.TaxClause{featuredTaxClause()},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("query var not resolved (-want +got):\n%s", diff)
	}
}
