// Package prefix_repo provides the PostgreSQL prefix registry (type name -> prefix code).
package prefix_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"docserial/internal/core/apperror"
	"docserial/internal/core/numerator"
	"docserial/internal/infrastructure/storage/postgres"
)

// DefaultTable is the registry table created by the bundled migrations.
const DefaultTable = "id_prefixes"

var selectCols = []string{"name", "prefix", "created_at", "updated_at"}

// Repo reads and maintains the prefix registry.
// Queries run through the transaction carried by ctx, if any.
type Repo struct {
	db      postgres.QuerierProvider
	table   string
	builder squirrel.StatementBuilderType
}

var _ numerator.PrefixRegistry = (*Repo)(nil)

// New creates a registry repo over table (DefaultTable when empty).
func New(db postgres.QuerierProvider, table string) *Repo {
	if table == "" {
		table = DefaultTable
	}
	return &Repo{
		db:      db,
		table:   table,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Resolve returns the prefix registered for typ.
func (r *Repo) Resolve(ctx context.Context, typ string) (string, error) {
	sql, args, err := r.resolveQuery(typ).ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var prefix string
	if err := pgxscan.Get(ctx, r.db.GetQuerier(ctx), &prefix, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return "", apperror.NewPrefixNotFound(typ)
		}
		return "", fmt.Errorf("resolve prefix: %w", err)
	}
	return prefix, nil
}

func (r *Repo) resolveQuery(typ string) squirrel.SelectBuilder {
	return r.builder.
		Select("prefix").
		From(r.table).
		Where(squirrel.Eq{"name": typ}).
		Limit(1)
}

// List returns every registry entry ordered by name.
func (r *Repo) List(ctx context.Context) ([]numerator.PrefixEntry, error) {
	sql, args, err := r.builder.
		Select(selectCols...).
		From(r.table).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []numerator.PrefixEntry
	if err := pgxscan.Select(ctx, r.db.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list prefixes: %w", err)
	}
	return entries, nil
}

// Upsert creates or replaces the prefix of entry.Name.
func (r *Repo) Upsert(ctx context.Context, entry numerator.PrefixEntry) (numerator.PrefixEntry, error) {
	entry, err := numerator.NormalizeEntry(entry)
	if err != nil {
		return entry, err
	}

	sql, args, err := r.upsertQuery(entry).ToSql()
	if err != nil {
		return entry, fmt.Errorf("build upsert: %w", err)
	}

	var saved numerator.PrefixEntry
	if err := pgxscan.Get(ctx, r.db.GetQuerier(ctx), &saved, sql, args...); err != nil {
		return entry, fmt.Errorf("upsert prefix %s: %w", entry.Name, err)
	}
	return saved, nil
}

func (r *Repo) upsertQuery(entry numerator.PrefixEntry) squirrel.InsertBuilder {
	return r.builder.
		Insert(r.table).
		Columns("name", "prefix").
		Values(entry.Name, entry.Prefix).
		Suffix("ON CONFLICT (name) DO UPDATE SET prefix = EXCLUDED.prefix, updated_at = now() RETURNING name, prefix, created_at, updated_at")
}

// Delete removes the entry for name.
func (r *Repo) Delete(ctx context.Context, name string) error {
	sql, args, err := r.builder.
		Delete(r.table).
		Where(squirrel.Eq{"name": name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete prefix %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.table, name)
	}
	return nil
}
