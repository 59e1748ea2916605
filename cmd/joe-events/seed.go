package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/joestump/joe-events/internal/config"
	"github.com/joestump/joe-events/internal/db"
	"github.com/joestump/joe-events/internal/slug"
	"github.com/joestump/joe-events/internal/store"
)

// seedFile is the YAML fixture format read by `joe-events seed`.
type seedFile struct {
	Organizer struct {
		Email string `yaml:"email"`
		Name  string `yaml:"name"`
	} `yaml:"organizer"`
	Events []seedEvent `yaml:"events"`
}

type seedEvent struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Venue       string    `yaml:"venue"`
	StartsAt    time.Time `yaml:"starts_at"`
	PriceCents  int       `yaml:"price_cents"`
	Capacity    int       `yaml:"capacity"`
	Status      string    `yaml:"status"`
	Categories  []string  `yaml:"categories"`
}

func (e seedEvent) input() store.EventInput {
	status := e.Status
	if status == "" {
		status = store.StatusPublished
	}
	return store.EventInput{
		Title:       e.Title,
		Description: e.Description,
		Venue:       e.Venue,
		StartsAt:    e.StartsAt,
		PriceCents:  e.PriceCents,
		Capacity:    e.Capacity,
		Status:      status,
		Categories:  e.Categories,
	}
}

// parseSeed decodes and validates a fixture file. Unknown keys are rejected.
func parseSeed(r io.Reader) (*seedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f seedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if f.Organizer.Email == "" {
		return nil, errors.New("seed: organizer.email is required")
	}
	for i, e := range f.Events {
		if err := store.ValidateEvent(e.input()); err != nil {
			return nil, fmt.Errorf("seed: events[%d] %q: %w", i, e.Title, err)
		}
	}
	return &f, nil
}

// applySeed upserts the organizer and creates every event whose slug is not
// already taken. It returns the number of events created.
func applySeed(ctx context.Context, users *store.UserStore, events *store.EventStore, f *seedFile, adminEmail string) (int, error) {
	name := f.Organizer.Name
	if name == "" {
		name = f.Organizer.Email
	}
	org, err := users.Upsert(ctx, "seed", f.Organizer.Email, f.Organizer.Email, name, adminEmail)
	if err != nil {
		return 0, fmt.Errorf("upsert organizer: %w", err)
	}

	created := 0
	for _, e := range f.Events {
		_, err := events.GetBySlug(ctx, slug.Make(e.Title))
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return created, err
		}
		if _, err := events.Create(ctx, org.ID, e.input()); err != nil {
			return created, fmt.Errorf("create %q: %w", e.Title, err)
		}
		created++
	}
	return created, nil
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load events from a YAML fixture file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDB()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			fh, err := os.Open(file)
			if err != nil {
				return err
			}
			defer fh.Close()
			f, err := parseSeed(fh)
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			cats := store.NewCategoryStore(database, nil, 0)
			n, err := applySeed(cmd.Context(), store.NewUserStore(database), store.NewEventStore(database, cats), f, cfg.AdminEmail)
			if err != nil {
				return err
			}
			logger.Info("seed complete", zap.String("file", file), zap.Int("created", n), zap.Int("skipped", len(f.Events)-n))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "fixture file to load")
	return cmd
}
