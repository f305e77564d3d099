package spotlight_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/events"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

const (
	editorID = int64(7)
	authorID = int64(9)
)

var (
	editor = models.Principal{UserID: editorID, Roles: []string{models.RoleEditor}}
	author = models.Principal{UserID: authorID, Roles: []string{models.RoleAuthor}}
)

func validForm(p models.Principal, featuredBox bool) spotlight.SaveForm {
	return spotlight.SaveForm{Featured: featuredBox, Nonce: fakeTokens{}.Issue(spotlight.NonceAction, p.UserID)}
}

func TestOnSave(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		item         models.Item
		principal    models.Principal
		form         spotlight.SaveForm
		startFeature bool
		wantOutcome  spotlight.SaveOutcome
		wantFeatured bool
		wantFlag     bool
	}{
		{
			name:         "checked with valid token features",
			item:         models.Item{ID: 1, ContentType: "article", AuthorID: authorID},
			principal:    editor,
			form:         validForm(editor, true),
			wantOutcome:  spotlight.OutcomeFeatured,
			wantFeatured: true,
		},
		{
			name:         "unchecked with valid token unfeatures",
			item:         models.Item{ID: 1, ContentType: "article", AuthorID: authorID},
			principal:    editor,
			form:         validForm(editor, false),
			startFeature: true,
			wantOutcome:  spotlight.OutcomeUnfeatured,
		},
		{
			name:         "checked twice stays featured",
			item:         models.Item{ID: 1, ContentType: "article", AuthorID: authorID},
			principal:    editor,
			form:         validForm(editor, true),
			startFeature: true,
			wantOutcome:  spotlight.OutcomeFeatured,
			wantFeatured: true,
		},
		{
			name:         "author may feature own item",
			item:         models.Item{ID: 1, ContentType: "article", AuthorID: authorID},
			principal:    author,
			form:         validForm(author, true),
			wantOutcome:  spotlight.OutcomeFeatured,
			wantFeatured: true,
		},
		{
			name:         "author may not feature another's item",
			item:         models.Item{ID: 1, ContentType: "article", AuthorID: editorID},
			principal:    author,
			form:         validForm(author, true),
			wantOutcome:  spotlight.OutcomeSkippedPermission,
			wantFlag:     true,
		},
		{
			name:         "missing token leaves state unchanged",
			item:         models.Item{ID: 1, ContentType: "article"},
			principal:    editor,
			form:         spotlight.SaveForm{Featured: false},
			startFeature: true,
			wantOutcome:  spotlight.OutcomeSkippedToken,
			wantFeatured: true,
			wantFlag:     true,
		},
		{
			name:         "token for another user is rejected",
			item:         models.Item{ID: 1, ContentType: "article"},
			principal:    editor,
			form:         validForm(author, true),
			wantOutcome:  spotlight.OutcomeSkippedToken,
			wantFlag:     true,
		},
		{
			name:         "revisions are ignored",
			item:         models.Item{ID: 1, ContentType: models.ContentTypeRevision},
			principal:    editor,
			form:         validForm(editor, true),
			wantOutcome:  spotlight.OutcomeSkippedRevision,
			wantFlag:     true,
		},
		{
			name:         "autosave is ignored",
			item:         models.Item{ID: 1, ContentType: "article"},
			principal:    editor,
			form:         spotlight.SaveForm{Featured: true, Nonce: validForm(editor, true).Nonce, Autosave: true},
			wantOutcome:  spotlight.OutcomeSkippedAutosave,
			wantFlag:     true,
		},
		{
			name:         "background save is ignored",
			item:         models.Item{ID: 1, ContentType: "article"},
			principal:    editor,
			form:         spotlight.SaveForm{Featured: false, Nonce: validForm(editor, false).Nonce, Background: true},
			startFeature: true,
			wantOutcome:  spotlight.OutcomeSkippedAutosave,
			wantFeatured: true,
			wantFlag:     true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := newTrackingStore()
			store.configure(t, "article")
			item := store.AddItem(tc.item)
			require.NoError(t, store.SetMeta(ctx, item.ID, spotlight.LegacyMetaKey, "on"))
			require.NoError(t, store.EnsureTerm(ctx, spotlight.FeatureGroup, spotlight.FeaturedTerm, "Featured"))
			if tc.startFeature {
				require.NoError(t, store.AddItemTerm(ctx, item.ID, spotlight.FeatureGroup, spotlight.FeaturedTerm))
			}

			outcome, err := newCoordinator(store).OnSave(ctx, item, tc.principal, tc.form)
			require.NoError(t, err)

			assert.Equal(t, tc.wantOutcome, outcome)
			assert.Equal(t, tc.wantFeatured, featured(t, store, item.ID))
			assert.Equal(t, tc.wantFlag, flagged(t, store, item.ID))
		})
	}
}

func TestOnSave_WithoutTokensSkips(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTrackingStore()
	item := store.AddItem(models.Item{ID: 1, ContentType: "article"})

	c := spotlight.New(store, nil)
	outcome, err := c.OnSave(ctx, item, editor, spotlight.SaveForm{Featured: true, Nonce: "anything"})
	require.NoError(t, err)
	assert.Equal(t, spotlight.OutcomeSkippedToken, outcome)
}

func TestOnSave_PublishesOnlyChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTrackingStore()
	item := store.AddItem(models.Item{ID: 1, ContentType: "article"})
	require.NoError(t, store.EnsureTerm(ctx, spotlight.FeatureGroup, spotlight.FeaturedTerm, "Featured"))
	pub := &recordingPublisher{}
	c := newCoordinator(store, spotlight.WithEventPublisher(pub))

	for _, box := range []bool{true, true, false, false} {
		_, err := c.OnSave(ctx, item, editor, validForm(editor, box))
		require.NoError(t, err)
	}

	assert.Equal(t, []events.EventType{events.FeatureAdded, events.FeatureRemoved}, pub.types())
}

func TestRoleAuthorizer(t *testing.T) {
	t.Parallel()

	a := spotlight.RoleAuthorizer{}
	item := models.Item{ID: 1, AuthorID: authorID}

	assert.True(t, a.CanEdit(models.Principal{UserID: 1, Roles: []string{models.RoleAdministrator}}, item))
	assert.True(t, a.CanEdit(editor, item))
	assert.True(t, a.CanEdit(author, item))
	assert.False(t, a.CanEdit(models.Principal{UserID: 2, Roles: []string{models.RoleAuthor}}, item))
	assert.False(t, a.CanEdit(models.Principal{UserID: 3}, item))
	assert.False(t, a.CanEdit(models.Principal{Roles: []string{models.RoleAdministrator}}, item))
}
