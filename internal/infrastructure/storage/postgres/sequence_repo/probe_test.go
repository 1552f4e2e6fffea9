package sequence_repo

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docserial/internal/core/apperror"
	"docserial/internal/core/numerator"
	"docserial/internal/infrastructure/storage/postgres"
)

type fakeRow struct {
	val *string
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.val == nil {
		return pgx.ErrNoRows
	}
	*(dest[0].(*string)) = *r.val
	return nil
}

type call struct {
	sql  string
	args []any
}

type fakeQuerier struct {
	calls   []call
	last    *string
	execErr error
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.calls = append(q.calls, call{sql, args})
	return pgconn.CommandTag{}, q.execErr
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.calls = append(q.calls, call{sql, args})
	return fakeRow{val: q.last}
}

type fakeTx struct {
	q    *fakeQuerier
	inTx bool
}

func (f *fakeTx) GetQuerier(ctx context.Context) postgres.Querier { return f.q }

func (f *fakeTx) GetTx(ctx context.Context) *postgres.Tx {
	if f.inTx {
		return &postgres.Tx{}
	}
	return nil
}

var (
	invoices = numerator.Target{Table: "test_invoices", Column: "invoice_no"}
	janScope = numerator.ScopeKey{Prefix: "INV", Date: "20240115"}
)

func TestProbe_MaxQuery_SQL(t *testing.T) {
	p := New(nil)

	sql, args, err := p.maxQuery(invoices, janScope).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT "invoice_no" FROM "test_invoices" WHERE "invoice_no" LIKE $1 `+
			`ORDER BY "invoice_no" COLLATE "C" DESC LIMIT 1 FOR UPDATE`,
		sql)
	assert.Equal(t, []any{"INV-20240115-%"}, args)
}

func TestProbe_MaxQuery_QuotesIdentifiers(t *testing.T) {
	p := New(nil)
	target := numerator.Target{Table: "billing.orders", Column: `order"no`}

	sql, _, err := p.maxQuery(target, janScope).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, `FROM "billing"."orders"`)
	assert.Contains(t, sql, `SELECT "order""no"`)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `A\_B-20240115-`, escapeLike("A_B-20240115-"))
	assert.Equal(t, `100\%-x`, escapeLike("100%-x"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

func TestLockArgs_DifferPerScopeAndTarget(t *testing.T) {
	base := lockArgs(invoices, janScope)
	assert.Equal(t, []any{`"test_invoices"`, "invoice_no|INV-20240115-"}, base)

	assert.NotEqual(t, base, lockArgs(invoices, numerator.ScopeKey{Prefix: "CMP", Date: "20240115"}))
	assert.NotEqual(t, base, lockArgs(invoices, numerator.ScopeKey{Prefix: "INV", Date: "20240116"}))
	assert.NotEqual(t, base, lockArgs(numerator.Target{Table: "test_orders", Column: "invoice_no"}, janScope))
	assert.NotEqual(t, base, lockArgs(numerator.Target{Table: "test_invoices", Column: "ref_no"}, janScope))
}

func TestLockArgs_TableIsResolvedByTheServer(t *testing.T) {
	assert.Contains(t, advisoryLockSQL, "::regclass)::oid")

	// Both spellings reach the server as relation names, so the oid
	// and therefore the lock are the same.
	plain := lockArgs(invoices, janScope)
	qualified := lockArgs(numerator.Target{Table: "public.test_invoices", Column: "invoice_no"}, janScope)
	assert.Equal(t, `"public"."test_invoices"`, qualified[0])
	assert.Equal(t, plain[1], qualified[1])
}

func TestProbeMax_LocksBeforeReading(t *testing.T) {
	last := "INV-20240115-0007"
	q := &fakeQuerier{last: &last}
	p := New(&fakeTx{q: q, inTx: true})

	got, err := p.ProbeMax(context.Background(), invoices, janScope)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, last, *got)

	require.Len(t, q.calls, 2)
	assert.Equal(t, advisoryLockSQL, q.calls[0].sql)
	assert.Equal(t, []any{`"test_invoices"`, "invoice_no|INV-20240115-"}, q.calls[0].args)
	assert.Contains(t, q.calls[1].sql, "FOR UPDATE")
}

func TestProbeMax_EmptyScope(t *testing.T) {
	q := &fakeQuerier{}
	p := New(&fakeTx{q: q, inTx: true})

	got, err := p.ProbeMax(context.Background(), invoices, janScope)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProbeMax_RequiresTransaction(t *testing.T) {
	q := &fakeQuerier{}
	p := New(&fakeTx{q: q, inTx: false})

	_, err := p.ProbeMax(context.Background(), invoices, janScope)
	require.Error(t, err)
	assert.Empty(t, q.calls)
}

func TestProbeMax_RequiresTarget(t *testing.T) {
	p := New(&fakeTx{q: &fakeQuerier{}, inTx: true})

	_, err := p.ProbeMax(context.Background(), numerator.Target{Table: "t"}, janScope)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestProbeMax_LockErrorIsWrapped(t *testing.T) {
	lockErr := &pgconn.PgError{Code: "55P03"}
	p := New(&fakeTx{q: &fakeQuerier{execErr: lockErr}, inTx: true})

	_, err := p.ProbeMax(context.Background(), invoices, janScope)
	assert.ErrorIs(t, err, lockErr)
	assert.True(t, apperror.IsTransient(postgres.ClassifyError(err)))
}
