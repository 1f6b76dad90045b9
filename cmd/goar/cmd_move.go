package main

import (
	"github.com/spf13/cobra"
)

var flagMoveBefore string

// newMoveCmd implements the `m` (move) operation: reorders named members, by default to the end
// of the archive, or before --before's target if given.
func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "m <archive> <name>...",
		Short: "Reorder members within the archive",
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
			if err := arc.Move(args[1:], flagMoveBefore); err != nil {
				return err
			}
			verboseLog(mods, "goar: moved %d member(s) in %s", len(args[1:]), args[0])
			return saveArchive(args[0], arc)
		},
	}
	cmd.Flags().StringVar(&flagMoveBefore, "before", "", "move the named members before this existing member instead of to the end")
	return cmd
}
