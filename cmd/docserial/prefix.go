package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"docserial/internal/core/numerator"
)

func newPrefixCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefix",
		Short: "Inspect and edit the prefix registry",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List registered prefixes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := a.context(cmd.Context())
				if err := a.connect(ctx); err != nil {
					return err
				}
				var entries []numerator.PrefixEntry
				err := a.stack.Tx.ReadOnly(ctx, func(ctx context.Context) error {
					var err error
					entries, err = a.stack.Registry.List(ctx)
					return err
				})
				if err != nil {
					return err
				}
				return printPrefixes(cmd.OutOrStdout(), entries)
			},
		},
		&cobra.Command{
			Use:   "set <type> <prefix>",
			Short: "Create or replace the prefix of a type",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				entry, err := numerator.NormalizeEntry(numerator.PrefixEntry{Name: args[0], Prefix: args[1]})
				if err != nil {
					return err
				}
				ctx := a.context(cmd.Context())
				if err := a.connect(ctx); err != nil {
					return err
				}
				saved, err := a.stack.Registry.Upsert(ctx, entry)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", saved.Name, saved.Prefix)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <type>",
			Short: "Remove a type from the registry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := a.context(cmd.Context())
				if err := a.connect(ctx); err != nil {
					return err
				}
				return a.stack.Registry.Delete(ctx, args[0])
			},
		},
	)
	return cmd
}

func printPrefixes(w io.Writer, entries []numerator.PrefixEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tPREFIX\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Prefix, e.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
