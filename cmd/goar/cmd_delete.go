package main

import (
	"github.com/spf13/cobra"
)

// newDeleteCmd implements the `d` (delete) operation.
func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "d <archive> <name>...",
		Short: "Delete members from the archive",
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
			if err := arc.Delete(args[1:]); err != nil {
				return err
			}
			verboseLog(mods, "goar: deleted %d member(s) from %s", len(args[1:]), args[0])
			return saveArchive(args[0], arc)
		},
	}
}
