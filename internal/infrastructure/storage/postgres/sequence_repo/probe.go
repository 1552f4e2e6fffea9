// Package sequence_repo finds the last identifier of a scope in a caller-owned table.
package sequence_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"docserial/internal/core/apperror"
	"docserial/internal/core/numerator"
	"docserial/internal/infrastructure/storage/postgres"
)

// TxProvider is satisfied by *postgres.TxManager.
type TxProvider interface {
	postgres.QuerierProvider
	GetTx(ctx context.Context) *postgres.Tx
}

// Probe implements numerator.SequenceProbe.
//
// Two locks are taken inside the caller's transaction:
//  1. a transaction-scoped advisory lock on hash(table oid|column|base), which
//     serializes allocators of one scope even while the scope has no rows;
//  2. FOR UPDATE on the greatest matching row.
//
// Both are released at COMMIT/ROLLBACK. Scopes that differ in table, column,
// prefix or date use different keys and do not wait on each other.
type Probe struct {
	db      TxProvider
	builder squirrel.StatementBuilderType
}

var _ numerator.SequenceProbe = (*Probe)(nil)

// New creates a probe bound to db.
func New(db TxProvider) *Probe {
	return &Probe{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ProbeMax returns the greatest value of target.Column starting with
// scope.Base(), compared byte-wise, or nil when there is none.
func (p *Probe) ProbeMax(ctx context.Context, target numerator.Target, scope numerator.ScopeKey) (*string, error) {
	if p.db.GetTx(ctx) == nil {
		return nil, apperror.NewInternal(errors.New("sequence probe must run inside a transaction"))
	}
	if target.Table == "" || target.Column == "" {
		return nil, apperror.NewValidation("target table and column are required").
			WithDetail("table", target.Table).
			WithDetail("column", target.Column)
	}

	querier := p.db.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, advisoryLockSQL, lockArgs(target, scope)...); err != nil {
		return nil, fmt.Errorf("lock scope %s on %s: %w", scope.Base(), target, err)
	}

	sql, args, err := p.maxQuery(target, scope).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var last string
	if err := querier.QueryRow(ctx, sql, args...).Scan(&last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("probe %s: %w", target, err)
	}
	return &last, nil
}

// The table is keyed by its oid, so "invoices" and "public.invoices" share a lock.
// An unknown table fails the cast with 42P01 before any row is read.
const advisoryLockSQL = `SELECT pg_advisory_xact_lock(hashtextextended(` +
	`($1::text::regclass)::oid::text || '|' || $2::text, 0))`

// lockArgs binds advisoryLockSQL for one (table, column, scope). The table is
// quoted the same way as in the probe query so both resolve to one relation.
func lockArgs(target numerator.Target, scope numerator.ScopeKey) []any {
	return []any{quoteTable(target.Table), target.Column + "|" + scope.Base()}
}

func (p *Probe) maxQuery(target numerator.Target, scope numerator.ScopeKey) squirrel.SelectBuilder {
	col := pgx.Identifier{target.Column}.Sanitize()

	return p.builder.
		Select(col).
		From(quoteTable(target.Table)).
		Where(squirrel.Like{col: escapeLike(scope.Base()) + "%"}).
		OrderBy(col + ` COLLATE "C" DESC`).
		Limit(1).
		Suffix("FOR UPDATE")
}

// quoteTable quotes "schema.table" as two identifiers.
func quoteTable(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
