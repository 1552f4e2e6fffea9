package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"docserial/internal/config"
	appctx "docserial/internal/core/context"
	"docserial/internal/infrastructure/numerator"
	"docserial/internal/infrastructure/storage/postgres"
	"docserial/pkg/logger"
)

// app holds what subcommands share. The database is opened lazily so that
// commands like token work without one.
type app struct {
	cfg   config.Config
	log   *logger.Logger
	pool  *postgres.Pool
	stack *numerator.Stack

	databaseURL string
	logLevel    string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "docserial",
		Short: "Daily sequential document identifiers (PREFIX-YYYYMMDD-SSSS)",
		Long: `docserial allocates identifiers of the form PREFIX-YYYYMMDD-SSSS whose
serial restarts every day per prefix, table and column.

Configuration is read from the same environment variables as the server
(DATABASE_URL, TX_LOCK_TIMEOUT, ALLOC_MAX_ATTEMPTS, ID_TIMEZONE, ...).

Examples:
  # Create the prefix registry table
  docserial migrate

  # Register the default prefixes (invoice, complaint, quotation)
  docserial seed

  # Allocate an invoice number for test_invoices.invoice_no
  docserial allocate --type invoice --table test_invoices --column invoice_no`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.databaseURL, "database-url", "", "PostgreSQL DSN (default $DATABASE_URL)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error (default $LOG_LEVEL)")

	root.AddCommand(
		newMigrateCmd(a),
		newSeedCmd(a),
		newPrefixCmd(a),
		newAllocateCmd(a),
		newTokenCmd(a),
	)
	return root
}

// execute runs root and releases the pool however the command ends.
// PersistentPostRun is skipped when RunE fails, so cleanup cannot live there.
func (a *app) execute(root *cobra.Command) error {
	defer a.close()
	return root.Execute()
}

func (a *app) init() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if a.databaseURL != "" {
		cfg.DatabaseURL = a.databaseURL
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: true,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log
	logger.SetDefault(log)
	return nil
}

// context returns a context carrying the logger and a CLI trace.
func (a *app) context(parent context.Context) context.Context {
	ctx := appctx.WithTrace(parent, appctx.NewTraceContext(appctx.OriginCLI))
	if a.log != nil {
		ctx = logger.WithLogger(ctx, a.log)
	}
	return ctx
}

// connect opens the pool and wires the allocator stack.
func (a *app) connect(ctx context.Context) error {
	if a.pool != nil {
		return nil
	}
	if err := a.cfg.RequireDatabase(); err != nil {
		return err
	}

	poolCfg := postgres.DefaultPoolConfig(a.cfg.DatabaseURL)
	poolCfg.AppName = "docserial-cli"
	poolCfg.MaxConns = 4
	poolCfg.MinConns = 0
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return err
	}
	a.pool = pool

	stackCfg := numerator.DefaultStackConfig()
	stackCfg.Tx.LockTimeout = a.cfg.TxLockTimeout
	stackCfg.Tx.StatementTimeout = a.cfg.TxStatementTimeout
	stackCfg.Retry.MaxAttempts = a.cfg.AllocMaxAttempts
	stackCfg.PrefixTable = a.cfg.PrefixTable

	a.stack = numerator.NewPostgresStack(pool, stackCfg,
		numerator.WithLocation(a.cfg.Location),
		numerator.WithLogger(a.log),
	)
	return nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
