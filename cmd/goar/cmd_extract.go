package main

import (
	"github.com/spf13/cobra"
)

// newExtractCmd implements the `x` (extract) operation. With no member names, every member is
// extracted.
func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "x <archive> [name...]",
		Short: "Extract members to the archive's directory",
		Args:  cobra.MinimumNArgs(1),
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
			names := args[1:]
			if len(names) == 0 {
				names = arc.Names()
			}
			if err := arc.Extract(names); err != nil {
				return err
			}
			verboseLog(mods, "goar: extracted %d member(s) from %s", len(names), args[0])
			return nil
		},
	}
}
