package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"docserial/internal/core/numerator"
)

// defaultSeed is registered when no --file is given.
var defaultSeed = map[string]string{
	"invoice":   "INV",
	"complaint": "CMP",
	"quotation": "QTN",
}

// seedFile is the YAML layout accepted by seed --file:
//
//	prefixes:
//	  invoice: INV
//	  complaint: CMP
type seedFile struct {
	Prefixes map[string]string `yaml:"prefixes"`
}

func newSeedCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register type prefixes (defaults: invoice, complaint, quotation)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := loadSeed(file)
			if err != nil {
				return err
			}

			ctx := a.context(cmd.Context())
			if err := a.connect(ctx); err != nil {
				return err
			}

			// All or nothing.
			return a.stack.Tx.RunInTransaction(ctx, func(ctx context.Context) error {
				return applySeed(ctx, a.stack.Registry, entries, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a prefixes: map of type -> prefix")
	return cmd
}

// loadSeed reads path, or returns defaultSeed when path is empty.
// Entries are validated and sorted by name.
func loadSeed(path string) ([]numerator.PrefixEntry, error) {
	kv := defaultSeed
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		var f seedFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse seed file %s: %w", path, err)
		}
		if len(f.Prefixes) == 0 {
			return nil, fmt.Errorf("seed file %s has no prefixes", path)
		}
		kv = f.Prefixes
	}

	entries := make([]numerator.PrefixEntry, 0, len(kv))
	for name, prefix := range kv {
		e, err := numerator.NormalizeEntry(numerator.PrefixEntry{Name: name, Prefix: prefix})
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func applySeed(ctx context.Context, reg numerator.PrefixRegistry, entries []numerator.PrefixEntry, w io.Writer) error {
	for _, e := range entries {
		saved, err := reg.Upsert(ctx, e)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-20s %s\n", saved.Name, saved.Prefix)
	}
	return nil
}
