// Package memstore is an in-memory item, metadata, classification and option
// store. It backs the "memory" database driver and the tests.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

type termKey struct {
	group string
	slug  string
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	types   map[string]models.ContentType
	items   map[int64]models.Item
	meta    map[int64]map[string]string
	groups  map[string]models.TermGroup
	terms   map[termKey]string
	members map[int64]map[termKey]struct{}
	options map[string]string
	nextID  int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		types:   make(map[string]models.ContentType),
		items:   make(map[int64]models.Item),
		meta:    make(map[int64]map[string]string),
		groups:  make(map[string]models.TermGroup),
		terms:   make(map[termKey]string),
		members: make(map[int64]map[termKey]struct{}),
		options: make(map[string]string),
	}
}

// DefaultContentTypes mirrors the types seeded by the SQL schema.
func DefaultContentTypes() []models.ContentType {
	return []models.ContentType{
		{Name: "post", Label: "Posts", SingularLabel: "Post", Public: true},
		{Name: "page", Label: "Pages", SingularLabel: "Page", Public: true},
		{Name: "attachment", Label: "Media", SingularLabel: "Media", Public: true},
		{Name: models.ContentTypeRevision, Label: "Revisions", SingularLabel: "Revision", Public: false},
		{Name: "nav_menu_item", Label: "Navigation Menu Items", SingularLabel: "Navigation Menu Item", Public: false},
	}
}

// NewSeeded returns a store holding DefaultContentTypes.
func NewSeeded() *Store {
	s := New()
	for _, ct := range DefaultContentTypes() {
		s.AddContentType(ct)
	}
	return s
}

// AddContentType registers ct, replacing any type with the same name.
func (s *Store) AddContentType(ct models.ContentType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[ct.Name] = ct
}

// UpsertContentType registers or relabels a content type.
func (s *Store) UpsertContentType(_ context.Context, ct models.ContentType) error {
	s.AddContentType(ct)
	return nil
}

// AddItem stores item. A zero ID is assigned the next free ID; zero
// timestamps are set to now. The stored item is returned.
func (s *Store) AddItem(item models.Item) models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == 0 {
		s.nextID++
		item.ID = s.nextID
	} else if item.ID > s.nextID {
		s.nextID = item.ID
	}
	if item.Status == "" {
		item.Status = models.StatusPublish
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}

	s.items[item.ID] = item
	return item
}

// SetMeta sets a metadata value on an item.
func (s *Store) SetMeta(_ context.Context, itemID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[itemID]; !ok {
		return fmt.Errorf("item %d: %w", itemID, models.ErrNotFound)
	}
	if s.meta[itemID] == nil {
		s.meta[itemID] = make(map[string]string)
	}
	s.meta[itemID][key] = value
	return nil
}

// ContentTypes returns every registered content type ordered by name.
func (s *Store) ContentTypes(_ context.Context) ([]models.ContentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ContentType, 0, len(s.types))
	for _, ct := range s.types {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetItem returns the item with id.
func (s *Store) GetItem(_ context.Context, id int64) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, models.ErrNotFound)
	}
	return &item, nil
}

// FindItems returns the page of items matching q, newest first.
func (s *Store) FindItems(_ context.Context, q models.ItemQuery) (models.ItemPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := q.EffectiveStatuses()
	matched := make([]models.Item, 0)
	for _, item := range s.items {
		if len(q.ContentTypes) > 0 && !slices.Contains(q.ContentTypes, item.ContentType) {
			continue
		}
		if statuses != nil && !slices.Contains(statuses, item.Status) {
			continue
		}
		if !s.matchMeta(item.ID, q.Meta) || !s.matchTax(item.ID, q.Tax) {
			continue
		}
		matched = append(matched, item)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	page := models.ItemPage{Total: len(matched), Items: []models.Item{}}
	if q.Offset >= len(matched) {
		return page, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	page.Items = append(page.Items, matched[max(q.Offset, 0):end]...)
	return page, nil
}

func (s *Store) matchMeta(itemID int64, clauses []models.MetaClause) bool {
	for _, clause := range clauses {
		value, ok := s.meta[itemID][clause.Key]
		switch clause.Compare {
		case models.CompareNotExists:
			if ok {
				return false
			}
		case models.CompareEquals:
			if !ok || value != clause.Value {
				return false
			}
		default:
			if !ok {
				return false
			}
		}
	}
	return true
}

func (s *Store) matchTax(itemID int64, clauses []models.TaxClause) bool {
	for _, clause := range clauses {
		member := false
		for _, slug := range clause.Terms {
			if _, ok := s.members[itemID][termKey{group: clause.Taxonomy, slug: slug}]; ok {
				member = true
				break
			}
		}
		if clause.Operator == models.OperatorNotIn {
			member = !member
		}
		if !member {
			return false
		}
	}
	return true
}

// GetMeta returns a metadata value.
func (s *Store) GetMeta(_ context.Context, itemID int64, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.meta[itemID][key]
	return value, ok, nil
}

// DeleteMeta removes a metadata key. Deleting an absent key is a no-op.
func (s *Store) DeleteMeta(_ context.Context, itemID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.meta[itemID], key)
	return nil
}

// RegisterGroup creates or replaces a classification group.
func (s *Store) RegisterGroup(_ context.Context, group models.TermGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group.ContentTypes = slices.Clone(group.ContentTypes)
	s.groups[group.Name] = group
	return nil
}

// Group returns a registered group.
func (s *Store) Group(name string) (models.TermGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[name]
	return g, ok
}

// EnsureTerm creates the term, and its group when missing.
func (s *Store) EnsureTerm(_ context.Context, group, slug, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group]; !ok {
		s.groups[group] = models.TermGroup{Name: group}
	}
	key := termKey{group: group, slug: slug}
	if _, ok := s.terms[key]; !ok {
		s.terms[key] = name
	}
	return nil
}

// HasTerm reports whether the item carries the term.
func (s *Store) HasTerm(_ context.Context, itemID int64, group, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.members[itemID][termKey{group: group, slug: slug}]
	return ok, nil
}

// AddItemTerm gives the item the term. The term must exist.
func (s *Store) AddItemTerm(_ context.Context, itemID int64, group, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := termKey{group: group, slug: slug}
	if _, ok := s.terms[key]; !ok {
		return fmt.Errorf("term %s/%s: %w", group, slug, models.ErrNotFound)
	}
	if _, ok := s.items[itemID]; !ok {
		return fmt.Errorf("item %d: %w", itemID, models.ErrNotFound)
	}
	if s.members[itemID] == nil {
		s.members[itemID] = make(map[termKey]struct{})
	}
	s.members[itemID][key] = struct{}{}
	return nil
}

// RemoveItemTerm removes the term from the item. Removing an absent
// membership is a no-op.
func (s *Store) RemoveItemTerm(_ context.Context, itemID int64, group, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.members[itemID], termKey{group: group, slug: slug})
	return nil
}

// GetOption returns a stored option.
func (s *Store) GetOption(_ context.Context, name string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.options[name]
	return value, ok, nil
}

// SetOption stores an option.
func (s *Store) SetOption(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.options[name] = value
	return nil
}
