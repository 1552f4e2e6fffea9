package numerator

import (
	"docserial/internal/infrastructure/storage/postgres"
	"docserial/internal/infrastructure/storage/postgres/prefix_repo"
	"docserial/internal/infrastructure/storage/postgres/sequence_repo"
)

// StackConfig tunes the PostgreSQL-backed allocator.
type StackConfig struct {
	Tx          postgres.TxOptions
	Retry       postgres.RetryPolicy
	PrefixTable string
}

// DefaultStackConfig returns READ COMMITTED transactions with 3 attempts.
func DefaultStackConfig() StackConfig {
	return StackConfig{
		Tx:          postgres.DefaultTxOptions(),
		Retry:       postgres.DefaultRetryPolicy(),
		PrefixTable: prefix_repo.DefaultTable,
	}
}

// Stack is the allocator wired to PostgreSQL together with the registry it reads.
type Stack struct {
	Tx        *postgres.TxManager
	Registry  *prefix_repo.Repo
	Allocator *Service
}

// NewPostgresStack wires TxManager, prefix registry and sequence probe into a Service.
func NewPostgresStack(pool *postgres.Pool, cfg StackConfig, opts ...Option) *Stack {
	txm := postgres.NewTxManager(pool).
		WithOptions(cfg.Tx).
		WithRetryPolicy(cfg.Retry)

	registry := prefix_repo.New(txm, cfg.PrefixTable)
	probe := sequence_repo.New(txm)

	return &Stack{
		Tx:        txm,
		Registry:  registry,
		Allocator: New(txm, registry, probe, opts...),
	}
}
