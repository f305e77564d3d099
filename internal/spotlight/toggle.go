package spotlight

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/events"
	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

// SaveForm is the edit-screen submission relevant to the featured toggle.
type SaveForm struct {
	Featured bool   `json:"featured"`
	Nonce    string `json:"nonce"`
	// Autosave and Background mark saves not initiated by the editor.
	Autosave   bool `json:"autosave,omitempty"`
	Background bool `json:"background,omitempty"`
}

// SaveOutcome describes what OnSave did.
type SaveOutcome string

const (
	OutcomeFeatured          SaveOutcome = "featured"
	OutcomeUnfeatured        SaveOutcome = "unfeatured"
	OutcomeSkippedRevision   SaveOutcome = "skipped_revision"
	OutcomeSkippedAutosave   SaveOutcome = "skipped_autosave"
	OutcomeSkippedPermission SaveOutcome = "skipped_permission"
	OutcomeSkippedToken      SaveOutcome = "skipped_token"
)

// Applied reports whether the save changed membership state.
func (o SaveOutcome) Applied() bool {
	return o == OutcomeFeatured || o == OutcomeUnfeatured
}

// Authorizer decides whether a principal may edit an item.
type Authorizer interface {
	CanEdit(principal models.Principal, item models.Item) bool
}

// Tokens issues and verifies anti-forgery tokens bound to an action and a user.
type Tokens interface {
	Issue(action string, userID int64) string
	Verify(action string, userID int64, token string) bool
}

// RoleAuthorizer lets administrators and editors edit every item and
// authors edit their own.
type RoleAuthorizer struct{}

// CanEdit implements Authorizer.
func (RoleAuthorizer) CanEdit(p models.Principal, item models.Item) bool {
	if p.UserID <= 0 {
		return false
	}
	if p.HasRole(models.RoleAdministrator) || p.HasRole(models.RoleEditor) {
		return true
	}
	return p.HasRole(models.RoleAuthor) && item.AuthorID == p.UserID
}

// WithAuthorizer overrides RoleAuthorizer.
func WithAuthorizer(a Authorizer) Option {
	return func(c *Coordinator) {
		if a != nil {
			c.authorizer = a
		}
	}
}

// WithTokens sets the anti-forgery token source. Without one every save is
// skipped and edit screens carry no token.
func WithTokens(t Tokens) Option {
	return func(c *Coordinator) { c.tokens = t }
}

// OnSave reflects the featured checkbox into the item's membership. Saves of
// revisions and automated saves are ignored, as are saves without edit
// permission or a valid token. The legacy flag is removed on every applied
// save.
func (c *Coordinator) OnSave(ctx context.Context, item models.Item, principal models.Principal, form SaveForm) (SaveOutcome, error) {
	outcome := c.checkSave(item, principal, form)
	if !outcome.Applied() {
		c.recorder.SaveHandled(outcome)
		c.log.Debug("Featured toggle skipped",
			infralogger.Int64("item_id", item.ID),
			infralogger.Int64("user_id", principal.UserID),
			infralogger.String("outcome", string(outcome)),
		)
		return outcome, nil
	}

	if err := c.store.DeleteMeta(ctx, item.ID, LegacyMetaKey); err != nil {
		return "", fmt.Errorf("delete legacy flag for item %d: %w", item.ID, err)
	}

	had, err := c.store.HasTerm(ctx, item.ID, FeatureGroup, FeaturedTerm)
	if err != nil {
		return "", fmt.Errorf("check featured membership for item %d: %w", item.ID, err)
	}

	switch {
	case form.Featured && !had:
		if addErr := c.store.AddItemTerm(ctx, item.ID, FeatureGroup, FeaturedTerm); addErr != nil {
			return "", fmt.Errorf("add featured membership for item %d: %w", item.ID, addErr)
		}
		c.publishMembership(ctx, events.FeatureAdded, item)
	case !form.Featured && had:
		if rmErr := c.store.RemoveItemTerm(ctx, item.ID, FeatureGroup, FeaturedTerm); rmErr != nil {
			return "", fmt.Errorf("remove featured membership for item %d: %w", item.ID, rmErr)
		}
		c.publishMembership(ctx, events.FeatureRemoved, item)
	}

	c.recorder.SaveHandled(outcome)
	c.log.Info("Featured toggle saved",
		infralogger.Int64("item_id", item.ID),
		infralogger.Int64("user_id", principal.UserID),
		infralogger.Bool("featured", form.Featured),
	)
	return outcome, nil
}

func (c *Coordinator) checkSave(item models.Item, principal models.Principal, form SaveForm) SaveOutcome {
	switch {
	case item.IsRevision():
		return OutcomeSkippedRevision
	case form.Autosave || form.Background:
		return OutcomeSkippedAutosave
	case !c.authorizer.CanEdit(principal, item):
		return OutcomeSkippedPermission
	case c.tokens == nil || form.Nonce == "" || !c.tokens.Verify(NonceAction, principal.UserID, form.Nonce):
		return OutcomeSkippedToken
	case form.Featured:
		return OutcomeFeatured
	default:
		return OutcomeUnfeatured
	}
}

func (c *Coordinator) publishMembership(ctx context.Context, eventType events.EventType, item models.Item) {
	c.publish(ctx, eventType, events.MembershipPayload{
		ItemID:      item.ID,
		ContentType: item.ContentType,
		Source:      "toggle",
	})
}
