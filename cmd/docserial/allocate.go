package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"docserial/internal/core/numerator"
)

var errDegraded = errors.New("allocation degraded to a fallback identifier")

type allocateOptions struct {
	typ    string
	prefix string
	table  string
	column string
	strict bool
	json   bool
}

func (o allocateOptions) validate() error {
	if (o.typ == "") == (o.prefix == "") {
		return errors.New("exactly one of --type or --prefix is required")
	}
	if o.table == "" || o.column == "" {
		return errors.New("--table and --column are required")
	}
	return nil
}

func newAllocateCmd(a *app) *cobra.Command {
	var opts allocateOptions

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Print the next identifier for a table/column",
		Long: `Allocate prints the identifier the next record should use. Nothing is
reserved: two calls without an insert in between print the same value.

On storage failures a fallback identifier SEED-<unix>-<rand> is printed
instead; --strict turns that into a non-zero exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			ctx := a.context(cmd.Context())
			if err := a.connect(ctx); err != nil {
				return err
			}
			return runAllocate(ctx, cmd.OutOrStdout(), a.stack.Allocator, opts)
		},
	}

	cmd.Flags().StringVar(&opts.typ, "type", "", "Registered type name (e.g. invoice)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Explicit prefix (bypasses the registry)")
	cmd.Flags().StringVar(&opts.table, "table", "", "Table holding the identifiers")
	cmd.Flags().StringVar(&opts.column, "column", "", "Column holding the identifiers")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit non-zero when a fallback identifier is produced")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print {\"id\", \"degraded\"} as JSON")
	return cmd
}

func runAllocate(ctx context.Context, w io.Writer, alloc numerator.Allocator, opts allocateOptions) error {
	target := numerator.Target{Table: opts.table, Column: opts.column}

	var res numerator.Result
	if opts.typ != "" {
		res = alloc.AllocateByType(ctx, opts.typ, target)
	} else {
		res = alloc.AllocateByPrefix(ctx, opts.prefix, target)
	}

	if opts.json {
		out := struct {
			ID       string `json:"id"`
			Degraded bool   `json:"degraded"`
		}{res.String(), res.IsDegraded()}
		if err := json.NewEncoder(w).Encode(out); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, res.String())
	}

	if opts.strict && res.IsDegraded() {
		return fmt.Errorf("%w: %v", errDegraded, res.Cause)
	}
	return nil
}
