package spotlight

import (
	"context"
	"errors"
	"slices"
)

// DefaultWidgetCount is the number of items a widget lists when unset.
const DefaultWidgetCount = 5

// ErrNoFeaturedTypes is returned when a widget is configured before any
// content type has been made featurable.
var ErrNoFeaturedTypes = errors.New("no featured content type is configured")

// WidgetSettings is one featured-items widget instance.
type WidgetSettings struct {
	Title       string `json:"title"`
	Number      int    `json:"number"`
	ContentType string `json:"content_type"`
}

// WithDefaults fills an unset Number.
func (w WidgetSettings) WithDefaults() WidgetSettings {
	if w.Number == 0 {
		w.Number = DefaultWidgetCount
	}
	return w
}

// UpdateWidget sanitizes submitted widget settings. The content type is kept
// only when it is one of the configured featured types.
func (c *Coordinator) UpdateWidget(ctx context.Context, submitted WidgetSettings) (WidgetSettings, error) {
	configured, err := c.ConfiguredTypes(ctx)
	if err != nil {
		return WidgetSettings{}, err
	}
	if len(configured) == 0 {
		return WidgetSettings{}, ErrNoFeaturedTypes
	}

	out := WidgetSettings{
		Title:  sanitizeText(submitted.Title),
		Number: submitted.Number,
	}
	if slices.Contains(configured, submitted.ContentType) {
		out.ContentType = submitted.ContentType
	}
	return out, nil
}

// WidgetItem is one rendered widget entry.
type WidgetItem struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Slug    string   `json:"slug"`
	Classes []string `json:"classes"`
}

// WidgetView is the data a widget renders.
type WidgetView struct {
	Title string       `json:"title,omitempty"`
	Items []WidgetItem `json:"items"`
}

// RenderWidget lists up to settings.Number featured items of the widget's
// content type. A widget without a content type renders nothing and
// returns a nil view.
func (c *Coordinator) RenderWidget(ctx context.Context, settings WidgetSettings) (*WidgetView, error) {
	settings = settings.WithDefaults()
	if settings.ContentType == "" {
		return nil, nil
	}

	view := &WidgetView{Title: sanitizeText(settings.Title), Items: []WidgetItem{}}

	// A negative number lists every featured item.
	page, err := c.Query(ctx, FeaturedQuery(settings.ContentType, settings.Number))
	if err != nil {
		return nil, err
	}

	for _, item := range page.Items {
		classes, classErr := c.Classes(ctx, item, []string{"pts-featured-post"})
		if classErr != nil {
			return nil, classErr
		}
		view.Items = append(view.Items, WidgetItem{
			ID:      item.ID,
			Title:   item.Title,
			Slug:    item.Slug,
			Classes: classes,
		})
	}
	return view, nil
}
