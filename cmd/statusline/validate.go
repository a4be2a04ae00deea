package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/David-Botos/statusline/pkg/cleaner"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the rule tables against the configured field count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadRuleTables()
			if err != nil {
				return err
			}
			fingerprint, err := tables.Fingerprint()
			if err != nil {
				return err
			}

			source := cfg.RulesFile
			if source == "" {
				source = "embedded defaults"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rules:         %s\n", source)
			fmt.Fprintf(out, "Fingerprint:   %s\n", fingerprint)
			fmt.Fprintf(out, "Field count:   %d\n", cfg.FieldCount)
			fmt.Fprintf(out, "Replacements:  %d\n", len(tables.Replacements))
			fmt.Fprintf(out, "Cantons:       %d\n", len(tables.Cantons))
			fmt.Fprintf(out, "Timespans:     %d\n", len(tables.Timespans))
			fmt.Fprintf(out, "Overlaps:      %d\n", len(tables.Overlaps()))
			fmt.Fprintf(out, "Triggers:      %v\n", cleaner.DefaultRules(tables.Cantons).Triggers())
			return nil
		},
	}
}
