package numerator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"docserial/internal/core/apperror"
	corenumerator "docserial/internal/core/numerator"
	"docserial/internal/infrastructure/storage/postgres"
)

// memStore stands in for PostgreSQL: per-scope mutexes play the role of the
// advisory lock and are held until the outermost RunAtomic returns.
type memStore struct {
	policy postgres.RetryPolicy

	mu        sync.Mutex
	tables    map[string]bool
	rows      map[corenumerator.Target][]string
	locks     map[string]*sync.Mutex
	probeErrs []error
	probes    int
	panicOn   string
}

type memTxKey struct{}

type memTx struct {
	held []*sync.Mutex
}

func (t *memTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}

func newMemStore(tables ...string) *memStore {
	policy := postgres.DefaultRetryPolicy()
	policy.InitialInterval = 0

	m := &memStore{
		policy: policy,
		tables: make(map[string]bool),
		rows:   make(map[corenumerator.Target][]string),
		locks:  make(map[string]*sync.Mutex),
	}
	for _, t := range tables {
		m.tables[t] = true
	}
	return m
}

func (m *memStore) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		return fn(ctx)
	}
	return m.policy.Do(ctx, func(ctx context.Context) error {
		t := &memTx{}
		defer t.release()
		return fn(context.WithValue(ctx, memTxKey{}, t))
	})
}

func (m *memStore) ProbeMax(ctx context.Context, target corenumerator.Target, scope corenumerator.ScopeKey) (*string, error) {
	t, ok := ctx.Value(memTxKey{}).(*memTx)
	if !ok {
		return nil, errors.New("probe outside transaction")
	}

	m.mu.Lock()
	m.probes++
	if m.panicOn != "" && m.panicOn == target.Table {
		m.mu.Unlock()
		panic("driver exploded")
	}
	if len(m.probeErrs) > 0 {
		err := m.probeErrs[0]
		m.probeErrs = m.probeErrs[1:]
		m.mu.Unlock()
		return nil, err
	}
	if !m.tables[target.Table] {
		m.mu.Unlock()
		return nil, apperror.NewStorageUnavailable(errors.New(`relation "` + target.Table + `" does not exist`))
	}
	key := target.String() + "|" + scope.Base()
	lk, ok := m.locks[key]
	if !ok {
		lk = &sync.Mutex{}
		m.locks[key] = lk
	}
	m.mu.Unlock()

	lk.Lock()
	t.held = append(t.held, lk)

	m.mu.Lock()
	defer m.mu.Unlock()

	var best *string
	for _, v := range m.rows[target] {
		if !strings.HasPrefix(v, scope.Base()) {
			continue
		}
		if best == nil || v > *best {
			v := v
			best = &v
		}
	}
	return best, nil
}

func (m *memStore) insert(target corenumerator.Target, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[target] = append(m.rows[target], id)
}

func (m *memStore) probeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probes
}

type mapResolver struct {
	mu       sync.Mutex
	prefixes map[string]string
	calls    int
}

func (r *mapResolver) Resolve(ctx context.Context, typ string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	p, ok := r.prefixes[typ]
	if !ok {
		return "", apperror.NewPrefixNotFound(typ)
	}
	return p, nil
}

type fixedRandom int

func (r fixedRandom) IntBetween(lo, hi int) int { return int(r) }
