package ar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MRI-lite script runner: a line-oriented interpreter for the classic ar script command subset
// (open, create, createthin, addmod, list, delete, extract, save, clear, end), each a thin
// adapter over one archive mutation call on the session's current archive.

// scriptSession holds the one archive an MRI-lite script operates on at a time.
type scriptSession struct {
	archive *Archive
	path    string
}

// RunScript interprets an MRI-lite script read from r. Lines are whitespace-tokenized after
// stripping anything from a `*` or `;` onward; blank lines are ignored. Execution stops at the
// first `end` command, or at the first error.
func RunScript(r io.Reader) error {
	sess := &scriptSession{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(stripScriptComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		stop, err := sess.exec(strings.ToLower(fields[0]), fields[1:])
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return scanner.Err()
}

func stripScriptComment(line string) string {
	if idx := strings.IndexAny(line, "*;"); idx >= 0 {
		return line[:idx]
	}
	return line
}

func (s *scriptSession) exec(cmd string, args []string) (stop bool, err error) {
	switch cmd {
	case "open":
		return false, s.open(args)
	case "create":
		return false, s.openNew(args, DialectAmbiguous)
	case "createthin":
		return false, s.openNew(args, DialectGNUThin)
	case "addmod":
		return false, s.withArchive(func() error { return s.archive.Insert(args) })
	case "list":
		return false, s.withArchive(func() error { return s.archive.PrintNames(os.Stdout) })
	case "delete":
		return false, s.withArchive(func() error { return s.archive.Delete(args) })
	case "extract":
		return false, s.withArchive(func() error { return s.archive.Extract(s.archive.Names()) })
	case "save":
		return false, s.save()
	case "clear":
		s.archive = nil
		s.path = ""
		return false, nil
	case "end":
		return true, nil
	default:
		return false, fmt.Errorf("ar: mri: unrecognised command %q", cmd)
	}
}

func (s *scriptSession) withArchive(fn func() error) error {
	if s.archive == nil {
		return fmt.Errorf("ar: mri: no archive is open")
	}
	return fn()
}

func (s *scriptSession) open(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("ar: mri: open requires exactly one archive path")
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return wrapIO(opOpening, path, err)
	}
	arc, err := ReadArchive(data, filepath.Dir(path))
	if err != nil {
		return err
	}
	s.archive, s.path = arc, path
	return nil
}

func (s *scriptSession) openNew(args []string, dialect Dialect) error {
	if len(args) != 1 {
		return fmt.Errorf("ar: mri: create/createthin requires exactly one archive path")
	}
	path := args[0]
	s.archive = NewArchive(dialect, Modifiers{Create: true}, filepath.Dir(path))
	s.path = path
	return nil
}

func (s *scriptSession) save() error {
	if s.archive == nil {
		return fmt.Errorf("ar: mri: no archive is open")
	}
	data, err := WriteArchive(s.archive)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return wrapIO(opWriting, s.path, err)
	}
	return nil
}
