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
)

// Order represents a row in the orders table.
type Order struct {
	ID         string    `db:"id"`
	EventID    string    `db:"event_id"`
	BuyerName  string    `db:"buyer_name"`
	BuyerEmail string    `db:"buyer_email"`
	Quantity   int       `db:"quantity"`
	TotalCents int       `db:"total_cents"`
	CreatedAt  time.Time `db:"created_at"`
}

// OrderLine is an order joined with the event it was placed for.
type OrderLine struct {
	Order
	EventSlug     string    `db:"event_slug"`
	EventTitle    string    `db:"event_title"`
	EventVenue    string    `db:"event_venue"`
	EventStartsAt time.Time `db:"event_starts_at"`
}

type OrderStore struct {
	db *sqlx.DB
}

func NewOrderStore(db *sqlx.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Create places an order for quantity tickets. It fails with ErrNotFound for
// an unknown event, ErrNotPublished for a draft, and ErrSoldOut when the
// event's remaining capacity is smaller than quantity.
func (s *OrderStore) Create(ctx context.Context, eventID, buyerName, buyerEmail string, quantity int) (*Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// SQLite serializes writers itself and has no row locks.
	lock := " FOR UPDATE"
	if s.db.DriverName() == "sqlite" {
		lock = ""
	}
	var ev Event
	err = tx.GetContext(ctx, &ev, tx.Rebind(`SELECT * FROM events WHERE id = ?`+lock), eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !ev.IsPublished() {
		return nil, ErrNotPublished
	}

	var sold int
	err = tx.GetContext(ctx, &sold, tx.Rebind(`SELECT COALESCE(SUM(quantity), 0) FROM orders WHERE event_id = ?`), eventID)
	if err != nil {
		return nil, err
	}
	if sold+quantity > ev.Capacity {
		return nil, ErrSoldOut
	}

	o := &Order{
		ID:         uuid.New().String(),
		EventID:    eventID,
		BuyerName:  strings.TrimSpace(buyerName),
		BuyerEmail: strings.TrimSpace(buyerEmail),
		Quantity:   quantity,
		TotalCents: quantity * ev.PriceCents,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO orders (id, event_id, buyer_name, buyer_email, quantity, total_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), o.ID, o.EventID, o.BuyerName, o.BuyerEmail, o.Quantity, o.TotalCents, o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

const orderLineColumns = `o.*, e.slug AS event_slug, e.title AS event_title, e.venue AS event_venue, e.starts_at AS event_starts_at`

// GetLine returns the order matching id with its event, or ErrNotFound.
func (s *OrderStore) GetLine(ctx context.Context, id string) (*OrderLine, error) {
	var l OrderLine
	err := s.db.GetContext(ctx, &l, s.db.Rebind(`
		SELECT `+orderLineColumns+`
		FROM orders o
		INNER JOIN events e ON e.id = o.event_id
		WHERE o.id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLines returns a page of orders, newest first, for events organized by
// organizerID, or for all events when organizerID is empty. The second
// result is the total number of matching orders.
func (s *OrderStore) ListLines(ctx context.Context, organizerID string, offset, limit int) ([]*OrderLine, int, error) {
	b := builder(s.db)
	countQ := b.Select("COUNT(*)").From("orders o").Join("events e ON e.id = o.event_id")
	pageQ := b.Select(orderLineColumns).From("orders o").Join("events e ON e.id = o.event_id").
		OrderBy("o.created_at DESC", "o.id ASC")
	if organizerID != "" {
		countQ = countQ.Where(sq.Eq{"e.organizer_id": organizerID})
		pageQ = pageQ.Where(sq.Eq{"e.organizer_id": organizerID})
	}
	if limit > 0 {
		pageQ = pageQ.Limit(uint64(limit))
	}
	if offset > 0 {
		pageQ = pageQ.Offset(uint64(offset))
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
	lines := []*OrderLine{}
	if err := s.db.SelectContext(ctx, &lines, pageSQL, pageArgs...); err != nil {
		return nil, 0, err
	}
	return lines, total, nil
}

// Sold returns the number of tickets sold for each event in ids.
func (s *OrderStore) Sold(ctx context.Context, ids []string) (map[string]int, error) {
	out := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`
		SELECT event_id, COALESCE(SUM(quantity), 0) AS sold
		FROM orders WHERE event_id IN (?)
		GROUP BY event_id
	`, ids)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		EventID string `db:"event_id"`
		Sold    int    `db:"sold"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.EventID] = r.Sold
	}
	return out, nil
}
