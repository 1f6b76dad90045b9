package main

import (
	"os"

	"github.com/spf13/cobra"

	ar "github.com/outpost-tools/goar"
)

// newScriptCmd runs an MRI-lite archive script read from a file, or from stdin when path is "-".
func newScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "script <file>",
		Short: "Run an MRI-lite archive script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "-" {
				return ar.RunScript(os.Stdin)
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return ar.RunScript(f)
		},
	}
}
