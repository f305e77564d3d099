// Package spotlight implements featured-item support for content types:
// the one-time move of legacy per-item flags into the featured
// classification group, the query compatibility shim that keeps legacy
// queries working afterwards, the edit-screen toggle, settings, and the
// read-side presentation helpers.
package spotlight

import (
	"context"

	"github.com/jonesrussell/north-cloud/spotlight/infrastructure/events"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

// Persisted names. These are shared with existing installations and must
// not change.
const (
	SettingsOption = "pts_featured_post_types_settings"
	VersionOption  = "pts_version"
	LegacyMetaKey  = "_pts_featured_post"
	FeatureGroup   = "pts_feature_tax"
	FeaturedTerm   = "featured"
	NonceAction    = "_pts_featured_post_nonce"

	// CurrentVersion is written to VersionOption once the legacy scan completes.
	CurrentVersion = "2.0.0"
)

// DefaultDocsURL is referenced by the deprecation notice for legacy queries.
const DefaultDocsURL = "https://wordpress.org/plugins/post-type-spotlight/faq/"

// Core is the surface the host wires into its lifecycle: initialization,
// query execution, item saves and item rendering.
type Core interface {
	RunMigrationIfNeeded(ctx context.Context) (MigrationReport, error)
	RewriteQuery(ctx context.Context, q models.ItemQuery) models.ItemQuery
	OnSave(ctx context.Context, item models.Item, principal models.Principal, form SaveForm) (SaveOutcome, error)
	IsFeatured(ctx context.Context, item models.Item) (bool, error)
}

// MigrationState is a read-only view of whether the legacy scan is running.
type MigrationState interface {
	InProgress() bool
}

// ItemFinder executes item queries.
type ItemFinder interface {
	FindItems(ctx context.Context, q models.ItemQuery) (models.ItemPage, error)
	GetItem(ctx context.Context, id int64) (*models.Item, error)
}

// MetaStore reads and deletes per-item metadata.
type MetaStore interface {
	GetMeta(ctx context.Context, itemID int64, key string) (value string, ok bool, err error)
	DeleteMeta(ctx context.Context, itemID int64, key string) error
}

// TermStore manages classification groups and item memberships.
type TermStore interface {
	RegisterGroup(ctx context.Context, group models.TermGroup) error
	EnsureTerm(ctx context.Context, group, slug, name string) error
	HasTerm(ctx context.Context, itemID int64, group, slug string) (bool, error)
	AddItemTerm(ctx context.Context, itemID int64, group, slug string) error
	RemoveItemTerm(ctx context.Context, itemID int64, group, slug string) error
}

// OptionStore persists named string options.
type OptionStore interface {
	GetOption(ctx context.Context, name string) (value string, ok bool, err error)
	SetOption(ctx context.Context, name, value string) error
}

// ContentTypeRegistry lists the content types known to the host.
type ContentTypeRegistry interface {
	ContentTypes(ctx context.Context) ([]models.ContentType, error)
}

// Store is everything the coordinator needs from the host.
type Store interface {
	ItemFinder
	MetaStore
	TermStore
	OptionStore
	ContentTypeRegistry
}

// EventPublisher receives membership change events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.FeatureEvent) error
}

// Recorder receives activity counts. The default discards them.
type Recorder interface {
	ItemMigrated()
	MigrationFailure(stage string)
	MigrationCompleted(items int)
	QueryRewritten(clauses int)
	SaveHandled(outcome SaveOutcome)
}

type nopRecorder struct{}

func (nopRecorder) ItemMigrated()           {}
func (nopRecorder) MigrationFailure(string) {}
func (nopRecorder) MigrationCompleted(int)  {}
func (nopRecorder) QueryRewritten(int)      {}
func (nopRecorder) SaveHandled(SaveOutcome) {}
