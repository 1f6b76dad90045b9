package main

import (
	"os"

	"github.com/spf13/cobra"
)

// newListCmd implements the `t` (table of contents / print_names) operation.
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "t <archive>",
		Short: "List member names",
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
			return arc.PrintNames(os.Stdout)
		},
	}
}
