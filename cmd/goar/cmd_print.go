package main

import (
	"os"

	"github.com/spf13/cobra"
)

// newPrintCmd implements the `p` (print_contents) operation: every member's payload, concatenated.
func newPrintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "p <archive>",
		Short: "Print member contents",
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
			return arc.PrintContents(os.Stdout)
		},
	}
}
