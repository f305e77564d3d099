package spotlight

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

// Content types never offered on the settings screen.
var excludedSettingsTypes = []string{models.ContentTypeRevision, "nav_menu_item"}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// sanitizeText strips markup from free-form input, blanks out ill-formed
// UTF-8 and control characters, then collapses whitespace. The result is
// NFC-normalized.
func sanitizeText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	// transformers carry state, so each call builds its own chain
	clean := transform.Chain(
		runes.ReplaceIllFormed(),
		runes.Map(func(r rune) rune {
			if r == unicode.ReplacementChar || unicode.IsControl(r) {
				return ' '
			}
			return r
		}),
		norm.NFC,
	)
	if out, _, err := transform.String(clean, s); err == nil {
		s = out
	}

	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ConfiguredTypes returns the raw stored setting. A missing or unreadable
// value yields an empty list.
func (c *Coordinator) ConfiguredTypes(ctx context.Context) ([]string, error) {
	raw, ok, err := c.store.GetOption(ctx, SettingsOption)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", SettingsOption, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var types []string
	if decodeErr := json.Unmarshal([]byte(raw), &types); decodeErr != nil {
		c.log.Warn("Ignoring malformed featured types setting", infralogger.Error(decodeErr))
		return nil, nil
	}
	return types, nil
}

// EligibleTypes returns the configured content types that still exist.
// Stale entries are dropped silently.
func (c *Coordinator) EligibleTypes(ctx context.Context) ([]string, error) {
	configured, err := c.ConfiguredTypes(ctx)
	if err != nil {
		return nil, err
	}
	if len(configured) == 0 {
		return nil, nil
	}

	known, err := c.knownTypes(ctx)
	if err != nil {
		return nil, err
	}

	eligible := make([]string, 0, len(configured))
	for _, name := range configured {
		if _, ok := known[name]; ok && !slices.Contains(eligible, name) {
			eligible = append(eligible, name)
		}
	}
	return eligible, nil
}

// IsEligible reports whether contentType is configured and exists.
func (c *Coordinator) IsEligible(ctx context.Context, contentType string) (bool, error) {
	eligible, err := c.EligibleTypes(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(eligible, contentType), nil
}

// SettingsField is one checkbox on the settings screen.
type SettingsField struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// SettingsFields lists every public content type except revisions and
// navigation menu items, marking the configured ones.
func (c *Coordinator) SettingsFields(ctx context.Context) ([]SettingsField, error) {
	types, err := c.store.ContentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content types: %w", err)
	}
	configured, err := c.ConfiguredTypes(ctx)
	if err != nil {
		return nil, err
	}

	fields := make([]SettingsField, 0, len(types))
	for _, ct := range types {
		if !ct.Public || slices.Contains(excludedSettingsTypes, ct.Name) {
			continue
		}
		fields = append(fields, SettingsField{
			Name:    ct.Name,
			Label:   ct.Label,
			Checked: slices.Contains(configured, ct.Name),
		})
	}
	return fields, nil
}

// SanitizeSettings cleans each submitted entry and keeps those naming an
// existing content type.
func (c *Coordinator) SanitizeSettings(ctx context.Context, input []string) ([]string, error) {
	known, err := c.knownTypes(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(input))
	for _, entry := range input {
		name := sanitizeText(entry)
		if _, ok := known[name]; !ok || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

// SaveSettings sanitizes and stores the featured content types, then
// re-registers the featured group for them.
func (c *Coordinator) SaveSettings(ctx context.Context, input []string) ([]string, error) {
	clean, err := c.SanitizeSettings(ctx, input)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", SettingsOption, err)
	}
	if setErr := c.store.SetOption(ctx, SettingsOption, string(encoded)); setErr != nil {
		return nil, fmt.Errorf("write %s: %w", SettingsOption, setErr)
	}

	if regErr := c.RegisterGroup(ctx); regErr != nil {
		return nil, regErr
	}

	c.log.Info("Featured content types updated", infralogger.Strings("content_types", clean))
	return clean, nil
}

func (c *Coordinator) knownTypes(ctx context.Context) (map[string]models.ContentType, error) {
	types, err := c.store.ContentTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content types: %w", err)
	}

	known := make(map[string]models.ContentType, len(types))
	for _, ct := range types {
		known[ct.Name] = ct
	}
	return known, nil
}
