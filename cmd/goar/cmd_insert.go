package main

import (
	"github.com/spf13/cobra"
)

// newInsertCmd implements the `r` (replace/insert) operation.
func newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "r <archive> <file>...",
		Short: "Insert or replace members in the archive",
		Args:  cobra.MinimumNArgs(2),
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
			if err := arc.Insert(args[1:]); err != nil {
				return err
			}
			verboseLog(mods, "goar: inserted %d member(s) into %s", len(args[1:]), args[0])
			return saveArchive(args[0], arc)
		},
	}
}
