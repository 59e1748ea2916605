package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ViewEvent is one event detail page view waiting to be recorded.
type ViewEvent struct {
	EventID  string
	ViewedAt time.Time
}

type ViewStore struct {
	db *sqlx.DB
}

func NewViewStore(db *sqlx.DB) *ViewStore {
	return &ViewStore{db: db}
}

// Record inserts a view row. A zero ViewedAt is recorded as now.
func (s *ViewStore) Record(ctx context.Context, v ViewEvent) error {
	at := v.ViewedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO event_views (id, event_id, viewed_at) VALUES (?, ?, ?)
	`), uuid.New().String(), v.EventID, at.UTC())
	return err
}

// CountsFor returns the number of recorded views for each event in ids.
// Events without views are absent from the map.
func (s *ViewStore) CountsFor(ctx context.Context, ids []string) (map[string]int, error) {
	out := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`
		SELECT event_id, COUNT(*) AS views
		FROM event_views WHERE event_id IN (?)
		GROUP BY event_id
	`, ids)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		EventID string `db:"event_id"`
		Views   int    `db:"views"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.EventID] = r.Views
	}
	return out, nil
}
