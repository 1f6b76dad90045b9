// Command goar is a portable, multi-dialect `ar` archiver: a thin cobra front-end mapping the
// binutils-style single-letter operations onto the core package's mutation calls.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	ar "github.com/outpost-tools/goar"
)

var (
	flagProfile   string
	flagDialect   string
	flagCreate    bool
	flagUpdate    bool
	flagRealTimes bool
	flagBuildSyms bool
	flagSortSyms  bool
	flagVerbose   bool
)

func main() {
	root := &cobra.Command{
		Use:   "goar",
		Short: "A portable ar archiver supporting GNU, BSD, Darwin and COFF dialects",
	}

	root.PersistentFlags().StringVar(&flagProfile, "profile", "", "path to a TOML profile supplying defaults")
	root.PersistentFlags().StringVar(&flagDialect, "dialect", "", "force the archive dialect (gnu, gnuthin, gnu64, bsd, darwin, darwin64, coff)")
	root.PersistentFlags().BoolVarP(&flagCreate, "create", "c", false, "create the archive if it does not exist")
	root.PersistentFlags().BoolVarP(&flagUpdate, "update-only", "u", false, "only replace members older than the file on disk")
	root.PersistentFlags().BoolVarP(&flagRealTimes, "real-timestamps", "U", false, "record real uid/gid/mtime instead of deterministic zeros")
	root.PersistentFlags().BoolVarP(&flagBuildSyms, "build-symtab", "s", false, "build/update the symbol table")
	root.PersistentFlags().BoolVarP(&flagSortSyms, "sort-symtab", "S", false, "sort the symbol table lexicographically")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log each operation")

	root.AddCommand(newInsertCmd())
	root.AddCommand(newDeleteCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newPrintCmd())
	root.AddCommand(newRanlibCmd())
	root.AddCommand(newMoveCmd())
	root.AddCommand(newQuickAppendCmd())
	root.AddCommand(newSymbolsCmd())
	root.AddCommand(newScriptCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// currentModifiers merges the loaded profile with whatever persistent flags were actually set on
// cmd, flags taking precedence.
func currentModifiers(cmd *cobra.Command, p *profile) ar.Modifiers {
	mods := p.modifiers()
	f := cmd.Flags()
	if f.Changed("update-only") {
		mods.UpdateOnly = flagUpdate
	}
	if f.Changed("real-timestamps") {
		mods.UseRealTimestampsAndIDs = flagRealTimes
	}
	if f.Changed("build-symtab") {
		mods.BuildSymbolTable = flagBuildSyms
	}
	if f.Changed("sort-symtab") {
		mods.SortSymbolTable = flagSortSyms
	}
	if f.Changed("verbose") {
		mods.Verbose = flagVerbose
	}
	mods.Create = flagCreate || mods.Create
	return mods
}

func currentDialect(p *profile) ar.Dialect {
	if flagDialect != "" {
		return (&profile{Dialect: flagDialect}).dialect()
	}
	return p.dialect()
}
