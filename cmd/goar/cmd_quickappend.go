package main

import (
	"github.com/spf13/cobra"
)

// newQuickAppendCmd implements the `q` (quick append) operation.
func newQuickAppendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "q <archive> <file>...",
		Short: "Append members without checking for existing duplicates",
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
			if err := arc.QuickAppend(args[1:]); err != nil {
				return err
			}
			verboseLog(mods, "goar: quick-appended %d member(s) to %s", len(args[1:]), args[0])
			return saveArchive(args[0], arc)
		},
	}
}
