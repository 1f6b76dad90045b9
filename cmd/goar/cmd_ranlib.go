package main

import (
	"github.com/spf13/cobra"
)

// newRanlibCmd implements the `s` (symbol-table rebuild / ranlib-equivalent) operation.
func newRanlibCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "s <archive>",
		Short: "Rebuild the symbol table (equivalent to ranlib)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(flagProfile)
			if err != nil {
				return err
			}
			mods := currentModifiers(cmd, p)
			arc, err := openArchive(args[0], currentDialect(p), mods)
			if err != nil {
				return err
			}
			if err := arc.Ranlib(); err != nil {
				return err
			}
			verboseLog(mods, "goar: rebuilt symbol table for %s", args[0])
			return saveArchive(args[0], arc)
		},
	}
}
