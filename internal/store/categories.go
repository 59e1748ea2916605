package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/joe-events/internal/cache"
	"github.com/joestump/joe-events/internal/slug"
)

// Category represents a row in the categories table.
type Category struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

// CategoryCount is a category with the number of events carrying it.
type CategoryCount struct {
	Name  string `db:"name" json:"name"`
	Slug  string `db:"slug" json:"slug"`
	Count int    `db:"count" json:"count"`
}

type CategoryStore struct {
	db    *sqlx.DB
	cache cache.Cache
	ttl   time.Duration
}

// NewCategoryStore returns a store whose facet counts are cached in c for
// ttl. A nil c disables caching.
func NewCategoryStore(db *sqlx.DB, c cache.Cache, ttl time.Duration) *CategoryStore {
	if c == nil {
		c = cache.Nop{}
	}
	return &CategoryStore{db: db, cache: c, ttl: ttl}
}

// DeriveCategorySlug returns the URL slug for a category name.
func DeriveCategorySlug(name string) string {
	return slug.Make(name)
}

// Upsert creates a category if none exists with the derived slug, or returns the existing one.
func (s *CategoryStore) Upsert(ctx context.Context, name string) (*Category, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c, err := upsertCategoryTx(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func upsertCategoryTx(ctx context.Context, tx *sqlx.Tx, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	slug := DeriveCategorySlug(name)

	var existing Category
	err := tx.GetContext(ctx, &existing, tx.Rebind(`SELECT * FROM categories WHERE slug = ?`), slug)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	c := &Category{ID: uuid.New().String(), Name: name, Slug: slug, CreatedAt: time.Now().UTC()}
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO categories (id, name, slug, created_at) VALUES (?, ?, ?, ?)
	`), c.ID, c.Name, c.Slug, c.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			// Lost a race with another writer; use its row.
			if err := tx.GetContext(ctx, &existing, tx.Rebind(`SELECT * FROM categories WHERE slug = ?`), slug); err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}
	return c, nil
}

// GetBySlug returns the category matching slug, or ErrNotFound.
func (s *CategoryStore) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	var c Category
	err := s.db.GetContext(ctx, &c, s.db.Rebind(`SELECT * FROM categories WHERE slug = ?`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListAll returns all categories ordered by name.
func (s *CategoryStore) ListAll(ctx context.Context) ([]*Category, error) {
	var cats []*Category
	err := s.db.SelectContext(ctx, &cats, `SELECT * FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// ListForEvent returns the categories attached to eventID, ordered by name.
func (s *CategoryStore) ListForEvent(ctx context.Context, eventID string) ([]*Category, error) {
	var cats []*Category
	err := s.db.SelectContext(ctx, &cats, s.db.Rebind(`
		SELECT c.* FROM categories c
		INNER JOIN event_categories ec ON ec.category_id = c.id
		WHERE ec.event_id = ?
		ORDER BY c.name ASC
	`), eventID)
	if err != nil {
		return nil, err
	}
	return cats, nil
}

const facetCacheKey = "facets:published"

// PublishedCounts returns categories with at least one published event and
// their event counts, ordered by name. Results are cached.
func (s *CategoryStore) PublishedCounts(ctx context.Context) ([]CategoryCount, error) {
	var counts []CategoryCount
	if cache.GetJSON(ctx, s.cache, facetCacheKey, &counts) {
		return counts, nil
	}
	err := s.db.SelectContext(ctx, &counts, s.db.Rebind(`
		SELECT c.name, c.slug, COUNT(e.id) AS count
		FROM categories c
		INNER JOIN event_categories ec ON ec.category_id = c.id
		INNER JOIN events e ON e.id = ec.event_id
		WHERE e.status = ?
		GROUP BY c.id, c.name, c.slug
		ORDER BY c.name ASC
	`), StatusPublished)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []CategoryCount{}
	}
	_ = cache.SetJSON(ctx, s.cache, facetCacheKey, counts, s.ttl)
	return counts, nil
}

// invalidate drops cached facet counts after a write that can change them.
func (s *CategoryStore) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, facetCacheKey)
}

type eventCategoryRow struct {
	EventID string `db:"event_id"`
	Category
}

// ListForEvents returns the categories of each event in ids, keyed by event ID.
func (s *CategoryStore) ListForEvents(ctx context.Context, ids []string) (map[string][]*Category, error) {
	out := make(map[string][]*Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`
		SELECT ec.event_id, c.* FROM categories c
		INNER JOIN event_categories ec ON ec.category_id = c.id
		WHERE ec.event_id IN (?)
		ORDER BY c.name ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	var rows []eventCategoryRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for i := range rows {
		c := rows[i].Category
		out[rows[i].EventID] = append(out[rows[i].EventID], &c)
	}
	return out, nil
}
