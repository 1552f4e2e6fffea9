package postgres

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docserial/internal/core/apperror"
	"docserial/pkg/logger"
)

// fakeTx records statements and how the transaction ended.
// Methods not overridden panic through the nil embedded interface.
type fakeTx struct {
	pgx.Tx

	mu         sync.Mutex
	execs      []string
	failOn     string
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return pgconn.CommandTag{}, &pgconn.PgError{Code: codeLockNotAvailable}
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	return nil
}

func (f *fakeTx) statements() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.execs...)
}

type fakeStarter struct {
	Querier
	failOn string
	txs    []*fakeTx
}

func (s *fakeStarter) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	tx := &fakeTx{failOn: s.failOn}
	s.txs = append(s.txs, tx)
	return tx, nil
}

func newFakeManager(attempts int) (*TxManager, *fakeStarter) {
	starter := &fakeStarter{}
	return &TxManager{pool: starter, opts: DefaultTxOptions(), retry: fastPolicy(attempts)}, starter
}

func quietContext() context.Context {
	return logger.WithLogger(context.Background(), logger.Nop())
}

func TestTxManager_CommitsOnSuccess(t *testing.T) {
	m, starter := newFakeManager(1)

	require.NoError(t, m.RunInTransaction(quietContext(), func(ctx context.Context) error {
		assert.NotNil(t, m.GetTx(ctx))
		return nil
	}))

	require.Len(t, starter.txs, 1)
	tx := starter.txs[0]
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
	assert.Equal(t, []string{
		"SET LOCAL statement_timeout = '30000ms'",
		"SET LOCAL lock_timeout = '5000ms'",
	}, tx.statements())
}

func TestTxManager_RollsBackOnPanic(t *testing.T) {
	m, starter := newFakeManager(3)

	assert.PanicsWithValue(t, "boom", func() {
		_ = m.RunAtomic(quietContext(), func(ctx context.Context) error {
			panic("boom")
		})
	})

	require.Len(t, starter.txs, 1, "a panic is not retried")
	assert.True(t, starter.txs[0].rolledBack)
	assert.False(t, starter.txs[0].committed)
}

func TestTxManager_RunAtomicRetriesFreshTransactions(t *testing.T) {
	m, starter := newFakeManager(3)
	calls := 0

	err := m.RunAtomic(quietContext(), func(ctx context.Context) error {
		calls++
		return &pgconn.PgError{Code: codeLockNotAvailable}
	})

	assert.True(t, apperror.IsTransient(err))
	assert.Equal(t, 3, calls)
	require.Len(t, starter.txs, 3)
	for _, tx := range starter.txs {
		assert.True(t, tx.rolledBack)
	}
}

func TestTxManager_NestedRunAtomicRollsBackToSavepoint(t *testing.T) {
	m, starter := newFakeManager(3)
	starter.failOn = "pg_advisory_xact_lock"
	calls := 0

	err := m.RunInTransaction(quietContext(), func(ctx context.Context) error {
		inner := m.RunAtomic(ctx, func(ctx context.Context) error {
			calls++
			_, err := m.GetQuerier(ctx).Exec(ctx, "SELECT pg_advisory_xact_lock(1)")
			return err
		})
		assert.True(t, apperror.IsTransient(inner))

		_, err := m.GetQuerier(ctx).Exec(ctx, "INSERT INTO t VALUES (1)")
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "joined transactions are not retried")
	require.Len(t, starter.txs, 1)
	tx := starter.txs[0]
	assert.True(t, tx.committed)

	stmts := tx.statements()[2:]
	require.Len(t, stmts, 4)
	assert.Regexp(t, `^SAVEPOINT sp_\d+$`, stmts[0])
	assert.Equal(t, "SELECT pg_advisory_xact_lock(1)", stmts[1])
	assert.Equal(t, "ROLLBACK TO "+stmts[0], stmts[2])
	assert.Equal(t, "INSERT INTO t VALUES (1)", stmts[3])
}

func TestTxManager_NestedPanicRollsBackToSavepoint(t *testing.T) {
	m, starter := newFakeManager(1)

	assert.Panics(t, func() {
		_ = m.RunInTransaction(quietContext(), func(ctx context.Context) error {
			return m.RunAtomic(ctx, func(ctx context.Context) error {
				panic("boom")
			})
		})
	})

	require.Len(t, starter.txs, 1)
	tx := starter.txs[0]
	stmts := tx.statements()
	require.Len(t, stmts, 4)
	assert.Equal(t, "ROLLBACK TO "+stmts[2], stmts[3])
	assert.True(t, tx.rolledBack)
}
