package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
)

const tableName = "kv_entries"

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question) //nolint:gochecknoglobals // shared statement builder

type (
	Client interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	}

	SQLite struct {
		client Client
		log    *slog.Logger
	}
)

// NewSQLite creates the backing table if needed. The client is expected to be a *sql.DB
// opened with the "sqlite" driver.
func NewSQLite(ctx context.Context, client Client, log *slog.Logger) (*SQLite, error) {
	_, err := client.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+tableName+` (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}

	return &SQLite{client: client, log: log}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := qb.Select("value").
		From(tableName).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("build select query: %w", err)
	}

	var value string
	if err = s.client.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}

	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	query, args, err := qb.Insert(tableName).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	if _, err = s.client.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	s.log.DebugContext(ctx, "kv entry stored", "key", key, "size", len(value))
	return nil
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	query, args, err := qb.Delete(tableName).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	if _, err = s.client.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
