package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"docserial/internal/infrastructure/storage/postgres/migrate"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.connect(a.context(cmd.Context())); err != nil {
				return err
			}
			if err := migrate.Up(a.pool.Unwrap()); err != nil {
				return err
			}
			return printVersion(cmd, a)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "down",
			Short: "Revert every applied migration (drops the prefix registry)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.connect(a.context(cmd.Context())); err != nil {
					return err
				}
				if err := migrate.Down(a.pool.Unwrap()); err != nil {
					return err
				}
				return printVersion(cmd, a)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.connect(a.context(cmd.Context())); err != nil {
					return err
				}
				return printVersion(cmd, a)
			},
		},
	)
	return cmd
}

func printVersion(cmd *cobra.Command, a *app) error {
	version, dirty, err := migrate.Version(a.pool.Unwrap())
	if err != nil {
		return err
	}
	suffix := ""
	if dirty {
		suffix = " (dirty)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d%s\n", version, suffix)
	return nil
}
