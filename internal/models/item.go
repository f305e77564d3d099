package models

import "time"

// Item statuses understood by the item store.
const (
	StatusPublish   = "publish"
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusPrivate   = "private"
	StatusFuture    = "future"
	StatusTrash     = "trash"
	StatusAutoDraft = "auto-draft"
	StatusInherit   = "inherit"

	// StatusAny matches every status, trash included.
	StatusAny = "any"
)

// AdminListStatuses are the statuses an admin list screen shows by default.
// Trash and auto-drafts are left out.
var AdminListStatuses = []string{StatusPublish, StatusFuture, StatusDraft, StatusPending, StatusPrivate}

// ContentTypeRevision is the content type of stored revisions.
const ContentTypeRevision = "revision"

// ContentType is a category of content items registered with the host.
type ContentType struct {
	Name          string `db:"name"           json:"name"`
	Label         string `db:"label"          json:"label"`
	SingularLabel string `db:"singular_label" json:"singular_label"`
	Public        bool   `db:"public"         json:"public"`
}

// Item is a host-owned content record.
type Item struct {
	ID          int64     `db:"id"           json:"id"`
	ContentType string    `db:"content_type" json:"content_type"`
	Title       string    `db:"title"        json:"title"`
	Slug        string    `db:"slug"         json:"slug"`
	Status      string    `db:"status"       json:"status"`
	AuthorID    int64     `db:"author_id"    json:"author_id"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

// IsRevision reports whether the item is a stored revision of another item.
func (i Item) IsRevision() bool {
	return i.ContentType == ContentTypeRevision
}

// TermGroup is a classification group (a tag-like taxonomy) scoped to a set
// of content types.
type TermGroup struct {
	Name         string   `json:"name"`
	Hierarchical bool     `json:"hierarchical"`
	ContentTypes []string `json:"content_types"`
}
