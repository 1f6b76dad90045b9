package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	ar "github.com/outpost-tools/goar"
)

// openArchive loads and parses archivePath, or — when mods.Create is set and the file does not
// yet exist — returns a fresh empty archive in the resolved dialect.
func openArchive(archivePath string, dialect ar.Dialect, mods ar.Modifiers) (*ar.Archive, error) {
	dir := filepath.Dir(archivePath)

	data, err := os.ReadFile(archivePath)
	if err != nil {
		if os.IsNotExist(err) && mods.Create {
			return ar.NewArchive(dialect, mods, dir), nil
		}
		return nil, fmt.Errorf("goar: opening %s: %w", archivePath, err)
	}

	arc, err := ar.ReadArchive(data, dir)
	if err != nil {
		return nil, err
	}
	arc.Modifiers = mods
	if dialect != ar.DialectAmbiguous {
		arc.Dialect = dialect
	}
	return arc, nil
}

// saveArchive serialises arc and writes it back to archivePath.
func saveArchive(archivePath string, arc *ar.Archive) error {
	data, err := ar.WriteArchive(arc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(archivePath, data, 0o644); err != nil {
		return fmt.Errorf("goar: writing %s: %w", archivePath, err)
	}
	return nil
}

func verboseLog(mods ar.Modifiers, format string, args ...interface{}) {
	if mods.Verbose {
		log.Printf(format, args...)
	}
}
