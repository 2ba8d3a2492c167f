package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-settingspage/pkg/options"
)

// Store persists options in the settings_options table.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

var _ options.Store = (*Store)(nil)

// New builds a store from a *bun.DB or anything exposing DB() *bun.DB, such
// as a go-persistence-bun client.
func New(client any) (*Store, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// Migrate creates the options table when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: options store is not configured")
	}
	_, err := s.db.NewCreateTable().
		Model((*optionRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: create options table: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, name string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, fmt.Errorf("sqlstore: options store is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, fmt.Errorf("sqlstore: option name is required")
	}

	record := &optionRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return record.Value, true, nil
}

func (s *Store) Set(ctx context.Context, name, value string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: options store is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("sqlstore: option name is required")
	}

	record := &optionRecord{
		Name:      name,
		Value:     value,
		Autoload:  true,
		UpdatedAt: s.now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: upsert option %q: %w", name, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: options store is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("sqlstore: option name is required")
	}
	_, err := s.db.NewDelete().
		Model((*optionRecord)(nil)).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: delete option %q: %w", name, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, names ...string) (map[string]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: options store is not configured")
	}

	var records []optionRecord
	query := s.db.NewSelect().Model(&records).OrderExpr("?TableAlias.name ASC")
	if filtered := trimNames(names); len(filtered) > 0 {
		query = query.Where("?TableAlias.name IN (?)", bun.In(filtered))
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("sqlstore: list options: %w", err)
	}

	out := make(map[string]string, len(records))
	for _, record := range records {
		out[record.Name] = record.Value
	}
	return out, nil
}

func trimNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
