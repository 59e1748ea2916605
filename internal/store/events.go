package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/joe-events/internal/slug"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// ErrHasOrders is returned when deleting an event that already sold tickets.
var ErrHasOrders = errors.New("event has orders and cannot be deleted")

// Event represents a row in the events table.
type Event struct {
	ID          string    `db:"id"`
	Slug        string    `db:"slug"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Venue       string    `db:"venue"`
	StartsAt    time.Time `db:"starts_at"`
	PriceCents  int       `db:"price_cents"`
	Capacity    int       `db:"capacity"`
	Status      string    `db:"status"`
	OrganizerID string    `db:"organizer_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (e *Event) IsPublished() bool {
	return e.Status == StatusPublished
}

// EventInput carries the organizer-editable fields of an event.
type EventInput struct {
	Title       string
	Description string
	Venue       string
	StartsAt    time.Time
	PriceCents  int
	Capacity    int
	Status      string
	Categories  []string
}

// EventQuery selects a page of events. Categories match by derived slug, so
// "Live Music" and "live-music" select the same rows; an event matches when
// it carries any of them. Zero-valued fields do not filter.
type EventQuery struct {
	Search      string
	Categories  []string
	Statuses    []string
	OrganizerID string
	From        time.Time
	Offset      int
	Limit       int
}

type EventStore struct {
	db   *sqlx.DB
	cats *CategoryStore
}

func NewEventStore(db *sqlx.DB, cats *CategoryStore) *EventStore {
	return &EventStore{db: db, cats: cats}
}

// Create inserts an event owned by organizerID with a slug derived from its
// title, and attaches its categories.
func (s *EventStore) Create(ctx context.Context, organizerID string, in EventInput) (*Event, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	eventSlug := slug.Make(in.Title)
	if slug.Validate(eventSlug) != nil {
		eventSlug = id[:8]
	}
	taken, err := s.slugExists(ctx, eventSlug)
	if err != nil {
		return nil, err
	}
	if taken {
		eventSlug = eventSlug + "-" + id[:8]
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO events (id, slug, title, description, venue, starts_at, price_cents, capacity, status, organizer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, eventSlug, strings.TrimSpace(in.Title), in.Description, in.Venue, in.StartsAt.UTC(),
		in.PriceCents, in.Capacity, in.Status, organizerID, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	if err := setCategoriesTx(ctx, tx, id, in.Categories); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.cats.invalidate(ctx)
	return s.GetByID(ctx, id)
}

func (s *EventStore) slugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM events WHERE slug = ?`), slug)
	return n > 0, err
}

// GetByID returns the event matching id, or ErrNotFound.
func (s *EventStore) GetByID(ctx context.Context, id string) (*Event, error) {
	var e Event
	err := s.db.GetContext(ctx, &e, s.db.Rebind(`SELECT * FROM events WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetBySlug returns the event matching slug, or ErrNotFound.
func (s *EventStore) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	var e Event
	err := s.db.GetContext(ctx, &e, s.db.Rebind(`SELECT * FROM events WHERE slug = ?`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Update replaces the editable fields and categories of an event. The slug
// is immutable so shared links keep working.
func (s *EventStore) Update(ctx context.Context, id string, in EventInput) (*Event, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE events
		SET title = ?, description = ?, venue = ?, starts_at = ?, price_cents = ?, capacity = ?, status = ?, updated_at = ?
		WHERE id = ?
	`), strings.TrimSpace(in.Title), in.Description, in.Venue, in.StartsAt.UTC(),
		in.PriceCents, in.Capacity, in.Status, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM event_categories WHERE event_id = ?`), id); err != nil {
		return nil, err
	}
	if err := setCategoriesTx(ctx, tx, id, in.Categories); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.cats.invalidate(ctx)
	return s.GetByID(ctx, id)
}

// Delete removes an event, its category links and its views. Events with
// orders cannot be deleted.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var orders int
	if err := tx.GetContext(ctx, &orders, tx.Rebind(`SELECT COUNT(*) FROM orders WHERE event_id = ?`), id); err != nil {
		return err
	}
	if orders > 0 {
		return ErrHasOrders
	}

	for _, stmt := range []string{
		`DELETE FROM event_categories WHERE event_id = ?`,
		`DELETE FROM event_views WHERE event_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM events WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.cats.invalidate(ctx)
	return nil
}

// List returns the page of events selected by q, ordered by start time, and
// the total number of matching events.
func (s *EventStore) List(ctx context.Context, q EventQuery) ([]*Event, int, error) {
	where := sq.And{}

	if term := strings.TrimSpace(q.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		where = append(where, sq.Or{
			sq.Like{"LOWER(e.title)": pattern},
			sq.Like{"LOWER(e.description)": pattern},
			sq.Like{"LOWER(e.venue)": pattern},
		})
	}

	if slugs := categorySlugs(q.Categories); len(slugs) > 0 {
		sub, args, err := sq.Select("ec.event_id").
			From("event_categories ec").
			Join("categories c ON c.id = ec.category_id").
			Where(sq.Eq{"c.slug": slugs}).
			ToSql()
		if err != nil {
			return nil, 0, err
		}
		where = append(where, sq.Expr("e.id IN ("+sub+")", args...))
	}

	if len(q.Statuses) > 0 {
		where = append(where, sq.Eq{"e.status": q.Statuses})
	}
	if q.OrganizerID != "" {
		where = append(where, sq.Eq{"e.organizer_id": q.OrganizerID})
	}
	if !q.From.IsZero() {
		where = append(where, sq.GtOrEq{"e.starts_at": q.From.UTC()})
	}

	b := builder(s.db)

	countQ := b.Select("COUNT(*)").From("events e")
	pageQ := b.Select("e.*").From("events e").OrderBy("e.starts_at ASC", "e.id ASC")
	if len(where) > 0 {
		countQ = countQ.Where(where)
		pageQ = pageQ.Where(where)
	}
	if q.Limit > 0 {
		pageQ = pageQ.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		pageQ = pageQ.Offset(uint64(q.Offset))
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}

	pageSQL, pageArgs, err := pageQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	events := []*Event{}
	if err := s.db.SelectContext(ctx, &events, pageSQL, pageArgs...); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// Count returns the number of events.
func (s *EventStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM events`)
	return n, err
}

func setCategoriesTx(ctx context.Context, tx *sqlx.Tx, eventID string, names []string) error {
	seen := map[string]bool{}
	for _, name := range names {
		slug := DeriveCategorySlug(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		c, err := upsertCategoryTx(ctx, tx, name)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO event_categories (event_id, category_id) VALUES (?, ?)
		`), eventID, c.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func categorySlugs(names []string) []string {
	out := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		slug := DeriveCategorySlug(n)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, slug)
	}
	return out
}
