package spotlight

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

// Admin list column and glyph.
const (
	ColumnKey    = "lp-featured"
	ColumnLabel  = "Featured"
	ColumnGlyph  = "dashicons-star-filled"
	dateColumn   = "date"
	attachmentCT = "attachment"

	// NonceField is the form field carrying the anti-forgery token.
	NonceField = "_pts_featured_post_noncename"
)

// EditState is what the edit screen needs to render the featured checkbox.
type EditState struct {
	Eligible   bool   `json:"eligible"`
	Featured   bool   `json:"featured"`
	Label      string `json:"label,omitempty"`
	Nonce      string `json:"nonce,omitempty"`
	NonceField string `json:"nonce_field,omitempty"`
}

// EditState returns the checkbox state for item. Items of ineligible types
// get a zero state with Eligible unset.
func (c *Coordinator) EditState(ctx context.Context, item models.Item, principal models.Principal) (EditState, error) {
	eligible, err := c.IsEligible(ctx, item.ContentType)
	if err != nil || !eligible {
		return EditState{}, err
	}

	featured, err := c.IsFeatured(ctx, item)
	if err != nil {
		return EditState{}, err
	}

	singular := item.ContentType
	known, err := c.knownTypes(ctx)
	if err != nil {
		return EditState{}, err
	}
	if ct, ok := known[item.ContentType]; ok && ct.SingularLabel != "" {
		singular = ct.SingularLabel
	}

	state := EditState{
		Eligible:   true,
		Featured:   featured,
		Label:      fmt.Sprintf("Feature this %s:", singular),
		NonceField: NonceField,
	}
	if c.tokens != nil {
		state.Nonce = c.tokens.Issue(NonceAction, principal.UserID)
	}
	return state, nil
}

// Classes appends the featured classes to classes when item is featured.
func (c *Coordinator) Classes(ctx context.Context, item models.Item, classes []string) ([]string, error) {
	featured, err := c.IsFeatured(ctx, item)
	if err != nil {
		return classes, err
	}
	if !featured {
		return classes, nil
	}
	return append(classes, FeaturedTerm, FeaturedTerm+"-"+item.ContentType), nil
}

// Column is one admin list column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Columns moves the date column to the end and inserts the featured column
// before it, for eligible content types.
func (c *Coordinator) Columns(ctx context.Context, contentType string, columns []Column) ([]Column, error) {
	eligible, err := c.IsEligible(ctx, contentType)
	if err != nil || !eligible {
		return columns, err
	}

	out := slices.DeleteFunc(slices.Clone(columns), func(col Column) bool {
		return col.Key == dateColumn || col.Key == ColumnKey
	})
	return append(out, Column{Key: ColumnKey, Label: ColumnLabel}, Column{Key: dateColumn, Label: "Date"}), nil
}

// ColumnCell returns the featured column value for item: the star glyph
// when featured, empty otherwise.
func (c *Coordinator) ColumnCell(ctx context.Context, column string, item models.Item) (string, error) {
	if column != ColumnKey {
		return "", nil
	}
	featured, err := c.IsFeatured(ctx, item)
	if err != nil || !featured {
		return "", err
	}
	return ColumnGlyph, nil
}

// View is the "Featured (N)" filter link on an admin list screen.
type View struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Count   int    `json:"count"`
	URL     string `json:"url"`
	Current bool   `json:"current"`
}

// FeaturedView builds the featured filter link for contentType. current is
// the request's pts_feature_tax filter value. It returns nil for ineligible
// types and for attachments.
func (c *Coordinator) FeaturedView(ctx context.Context, contentType, current string) (*View, error) {
	if contentType == attachmentCT {
		return nil, nil
	}
	eligible, err := c.IsEligible(ctx, contentType)
	if err != nil || !eligible {
		return nil, err
	}

	// count what the linked list screen shows, not just published items
	q := FeaturedQuery(contentType, 1)
	q.Statuses = slices.Clone(models.AdminListStatuses)

	page, err := c.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("post_type", contentType)
	params.Set(FeatureGroup, FeaturedTerm)

	return &View{
		Key:     FeaturedTerm,
		Label:   ColumnLabel,
		Count:   page.Total,
		URL:     "edit.php?" + params.Encode(),
		Current: current == FeaturedTerm,
	}, nil
}
