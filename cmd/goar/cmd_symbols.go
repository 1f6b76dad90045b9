package main

import (
	"os"

	"github.com/spf13/cobra"
)

// newSymbolsCmd implements print_symbols. It has no single-letter binutils equivalent (the
// classic operation set has no symbol-listing verb distinct from `s`/ranlib), so it is exposed
// under its full name instead of a conflicting single letter.
func newSymbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols <archive>",
		Short: "Print the archive's symbol table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(flagProfile)
			if err != nil {
				return err
			}
			arc, err := openArchive(args[0], currentDialect(p), currentModifiers(cmd, p))
			if err != nil {
				return err
			}
			return arc.PrintSymbols(os.Stdout)
		},
	}
}
