package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

const itemColumns = `i.id, i.content_type, i.title, i.slug, i.status, i.author_id, i.created_at, i.updated_at`

// Repository is the PostgreSQL host store.
type Repository struct {
	db     *sqlx.DB
	logger infralogger.Logger
}

// NewRepository creates a new repository instance
func NewRepository(db *sqlx.DB, log infralogger.Logger) *Repository {
	return &Repository{db: db, logger: log}
}

// ====================
// Content types
// ====================

// ContentTypes returns every registered content type ordered by name.
func (r *Repository) ContentTypes(ctx context.Context) ([]models.ContentType, error) {
	types := []models.ContentType{}
	query := `SELECT name, label, singular_label, public FROM content_types ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("failed to list content types: %w", err)
	}
	return types, nil
}

// UpsertContentType registers or relabels a content type.
func (r *Repository) UpsertContentType(ctx context.Context, ct models.ContentType) error {
	query := `
		INSERT INTO content_types (name, label, singular_label, public)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
		SET label = EXCLUDED.label, singular_label = EXCLUDED.singular_label, public = EXCLUDED.public
	`
	if _, err := r.db.ExecContext(ctx, query, ct.Name, ct.Label, ct.SingularLabel, ct.Public); err != nil {
		return fmt.Errorf("failed to upsert content type %s: %w", ct.Name, err)
	}
	return nil
}

// ====================
// Items
// ====================

// GetItem retrieves an item by ID
func (r *Repository) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	if id <= 0 {
		return nil, models.ErrInvalidItemID
	}

	item := &models.Item{}
	query := `SELECT ` + itemColumns + ` FROM content_items i WHERE i.id = $1`

	if err := r.db.GetContext(ctx, item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// FindItems runs q. Total counts every match before Limit and Offset apply.
func (r *Repository) FindItems(ctx context.Context, q models.ItemQuery) (models.ItemPage, error) {
	where, args := buildItemWhere(q)

	var total int
	countQuery := `SELECT COUNT(*) FROM content_items i WHERE 1=1` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return models.ItemPage{}, fmt.Errorf("failed to count items: %w", err)
	}

	// #nosec G202 -- clauses are built from fixed fragments; values are bound parameters
	selectQuery := `SELECT ` + itemColumns + ` FROM content_items i WHERE 1=1` + where +
		` ORDER BY i.created_at DESC, i.id DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit)
		selectQuery += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		selectQuery += ` OFFSET $` + strconv.Itoa(len(args))
	}

	items := []models.Item{}
	if err := r.db.SelectContext(ctx, &items, selectQuery, args...); err != nil {
		return models.ItemPage{}, fmt.Errorf("failed to list items: %w", err)
	}

	return models.ItemPage{Items: items, Total: total}, nil
}

// whereBuilder accumulates AND-ed predicates with positional parameters.
type whereBuilder struct {
	sb   strings.Builder
	args []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) and(predicate string) {
	w.sb.WriteString(" AND ")
	w.sb.WriteString(predicate)
}

func buildItemWhere(q models.ItemQuery) (string, []any) {
	w := &whereBuilder{}

	if len(q.ContentTypes) > 0 {
		w.and("i.content_type = ANY(" + w.arg(pq.Array(q.ContentTypes)) + ")")
	}
	if statuses := q.EffectiveStatuses(); statuses != nil {
		w.and("i.status = ANY(" + w.arg(pq.Array(statuses)) + ")")
	}

	for _, clause := range q.Meta {
		key := w.arg(clause.Key)
		switch clause.Compare {
		case models.CompareNotExists:
			w.and("NOT EXISTS (SELECT 1 FROM item_meta m WHERE m.item_id = i.id AND m.meta_key = " + key + ")")
		case models.CompareEquals:
			value := w.arg(clause.Value)
			w.and("EXISTS (SELECT 1 FROM item_meta m WHERE m.item_id = i.id AND m.meta_key = " + key +
				" AND m.meta_value = " + value + ")")
		default:
			w.and("EXISTS (SELECT 1 FROM item_meta m WHERE m.item_id = i.id AND m.meta_key = " + key + ")")
		}
	}

	for _, clause := range q.Tax {
		column := "t.slug"
		if clause.Field == "name" {
			column = "t.name"
		}
		member := "EXISTS (SELECT 1 FROM term_relationships tr JOIN terms t ON t.id = tr.term_id" +
			" WHERE tr.item_id = i.id AND t.group_name = " + w.arg(clause.Taxonomy) +
			" AND " + column + " = ANY(" + w.arg(pq.Array(clause.Terms)) + "))"
		if clause.Operator == models.OperatorNotIn {
			member = "NOT " + member
		}
		w.and(member)
	}

	return w.sb.String(), w.args
}

// ====================
// Metadata
// ====================

// GetMeta returns one metadata value.
func (r *Repository) GetMeta(ctx context.Context, itemID int64, key string) (string, bool, error) {
	var value string
	query := `SELECT meta_value FROM item_meta WHERE item_id = $1 AND meta_key = $2`

	if err := r.db.GetContext(ctx, &value, query, itemID, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, true, nil
}

// DeleteMeta removes a metadata key. Removing an absent key is not an error.
func (r *Repository) DeleteMeta(ctx context.Context, itemID int64, key string) error {
	query := `DELETE FROM item_meta WHERE item_id = $1 AND meta_key = $2`
	if _, err := r.db.ExecContext(ctx, query, itemID, key); err != nil {
		return fmt.Errorf("failed to delete meta %s: %w", key, err)
	}
	return nil
}

// ====================
// Terms
// ====================

// RegisterGroup creates or replaces a classification group.
func (r *Repository) RegisterGroup(ctx context.Context, group models.TermGroup) error {
	query := `
		INSERT INTO term_groups (name, hierarchical, content_types)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET hierarchical = EXCLUDED.hierarchical, content_types = EXCLUDED.content_types
	`
	if _, err := r.db.ExecContext(ctx, query, group.Name, group.Hierarchical, pq.Array(group.ContentTypes)); err != nil {
		return fmt.Errorf("failed to register group %s: %w", group.Name, err)
	}
	return nil
}

// EnsureTerm creates the term, and its group when missing.
func (r *Repository) EnsureTerm(ctx context.Context, group, slug, name string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO term_groups (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, group,
	); err != nil {
		return fmt.Errorf("failed to ensure group %s: %w", group, err)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO terms (group_name, slug, name) VALUES ($1, $2, $3) ON CONFLICT (group_name, slug) DO NOTHING`,
		group, slug, name,
	); err != nil {
		return fmt.Errorf("failed to ensure term %s/%s: %w", group, slug, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit term %s/%s: %w", group, slug, err)
	}
	return nil
}

// HasTerm reports whether the item carries the term.
func (r *Repository) HasTerm(ctx context.Context, itemID int64, group, slug string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM term_relationships tr
			JOIN terms t ON t.id = tr.term_id
			WHERE tr.item_id = $1 AND t.group_name = $2 AND t.slug = $3
		)
	`
	if err := r.db.GetContext(ctx, &exists, query, itemID, group, slug); err != nil {
		return false, fmt.Errorf("failed to check term %s/%s: %w", group, slug, err)
	}
	return exists, nil
}

// AddItemTerm gives the item the term. The term must exist.
func (r *Repository) AddItemTerm(ctx context.Context, itemID int64, group, slug string) error {
	query := `
		INSERT INTO term_relationships (item_id, term_id)
		SELECT $1, t.id FROM terms t WHERE t.group_name = $2 AND t.slug = $3
		ON CONFLICT (item_id, term_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, itemID, group, slug)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("item %d: %w", itemID, models.ErrNotFound)
		}
		return fmt.Errorf("failed to add term %s/%s: %w", group, slug, err)
	}

	if rows, rowsErr := result.RowsAffected(); rowsErr == nil && rows == 0 {
		has, hasErr := r.HasTerm(ctx, itemID, group, slug)
		if hasErr != nil {
			return hasErr
		}
		if !has {
			return fmt.Errorf("term %s/%s: %w", group, slug, models.ErrNotFound)
		}
	}
	return nil
}

// RemoveItemTerm removes the term from the item. Removing an absent
// membership is a no-op.
func (r *Repository) RemoveItemTerm(ctx context.Context, itemID int64, group, slug string) error {
	query := `
		DELETE FROM term_relationships tr
		USING terms t
		WHERE tr.term_id = t.id AND tr.item_id = $1 AND t.group_name = $2 AND t.slug = $3
	`
	if _, err := r.db.ExecContext(ctx, query, itemID, group, slug); err != nil {
		return fmt.Errorf("failed to remove term %s/%s: %w", group, slug, err)
	}
	return nil
}

// ====================
// Options
// ====================

// GetOption returns a stored option.
func (r *Repository) GetOption(ctx context.Context, name string) (string, bool, error) {
	var value string
	if err := r.db.GetContext(ctx, &value, `SELECT value FROM options WHERE name = $1`, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get option %s: %w", name, err)
	}
	return value, true, nil
}

// SetOption stores an option.
func (r *Repository) SetOption(ctx context.Context, name, value string) error {
	query := `
		INSERT INTO options (name, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("failed to set option %s: %w", name, err)
	}

	r.logger.Debug("Option stored", infralogger.String("name", name))
	return nil
}
