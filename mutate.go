package ar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Mutation operations that drive the archive model in archive.go through the object extractors in
// elf.go/macho.go/coff.go/object.go and the host facilities in host.go.

// Insert stats and reads each path, replacing an existing member of the same basename in place or
// appending a new one, and (when Modifiers.BuildSymbolTable is set) extracts and attaches that
// member's symbols.
func (a *Archive) Insert(paths []string) error {
	for _, p := range paths {
		if err := a.insertOne(p); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) insertOne(path string) error {
	meta, err := statHostFile(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	idx := a.IndexOf([]byte(name))

	if a.Modifiers.UpdateOnly && idx >= 0 && !meta.ModTime.After(a.Members[idx].ModTime) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return wrapIO(opReading, path, err)
	}

	m := &Member{Name: []byte(name), Payload: data}
	if a.Modifiers.DeterministicMode() {
		m.ModTime = ZeroTimestamp
		m.Uid = DeterministicUID
		m.Gid = DeterministicGID
		m.Mode = DeterministicMode
	} else {
		m.ModTime = meta.ModTime
		m.Uid = meta.Uid
		m.Gid = meta.Gid
		m.Mode = meta.Mode
	}

	if idx >= 0 {
		a.removeSymbolsForMember(idx)
		a.replaceMember(idx, m)
	} else {
		idx = a.appendMember(m)
	}

	if a.Modifiers.BuildSymbolTable {
		if err := a.attachSymbolsFor(idx); err != nil {
			return err
		}
	}
	return nil
}

// attachSymbolsFor runs the object extractor over member idx's payload and appends the resulting
// SymbolRefs, tagged with that member's current index. A member whose format is recognised but
// whose machine type isn't supported (or whose magic is truncated/malformed) aborts extraction for
// that member only, carrying no symbols, rather than failing the whole mutation.
func (a *Archive) attachSymbolsFor(idx int) error {
	candidates, err := extractObjectSymbols(a.Members[idx].Payload)
	if err != nil {
		if errors.Is(err, ErrNotSupportedMachine) || errors.Is(err, ErrNotObject) {
			return nil
		}
		return err
	}
	for _, c := range candidates {
		a.Symbols = append(a.Symbols, &SymbolRef{
			Name:        append([]byte(nil), c.name...),
			MemberIndex: uint64(idx),
		})
	}
	return nil
}

// QuickAppend reads each path and appends it unconditionally, without checking for an existing
// member of the same basename. It differs from Insert only in skipping that lookup, matching the
// classic ar -q fast-path semantics.
func (a *Archive) QuickAppend(paths []string) error {
	for _, path := range paths {
		meta, err := statHostFile(path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return wrapIO(opReading, path, err)
		}

		m := &Member{Name: []byte(filepath.Base(path)), Payload: data}
		if a.Modifiers.DeterministicMode() {
			m.ModTime = ZeroTimestamp
			m.Uid = DeterministicUID
			m.Gid = DeterministicGID
			m.Mode = DeterministicMode
		} else {
			m.ModTime = meta.ModTime
			m.Uid = meta.Uid
			m.Gid = meta.Gid
			m.Mode = meta.Mode
		}

		idx := a.appendMember(m)
		if a.Modifiers.BuildSymbolTable {
			if err := a.attachSymbolsFor(idx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Move relocates the named members, preserving their relative order among themselves, to just
// before target (or to the end, if target is empty, not found, or itself one of the moved
// members). Member indices referenced by SymbolRefs are
// renumbered to track the move.
func (a *Archive) Move(names []string, target string) error {
	moving := make(map[int]bool, len(names))
	for _, n := range names {
		if idx := a.IndexOf([]byte(n)); idx >= 0 {
			moving[idx] = true
		}
	}
	if len(moving) == 0 {
		return nil
	}

	targetIdx := -1
	if target != "" {
		targetIdx = a.IndexOf([]byte(target))
	}

	oldToNew := make(map[int]int, len(a.Members))
	reordered := make([]*Member, 0, len(a.Members))
	insertMoved := func() {
		for i, m := range a.Members {
			if moving[i] {
				oldToNew[i] = len(reordered)
				reordered = append(reordered, m)
			}
		}
	}

	for i, m := range a.Members {
		if moving[i] {
			continue
		}
		if i == targetIdx {
			insertMoved()
		}
		oldToNew[i] = len(reordered)
		reordered = append(reordered, m)
	}
	if targetIdx < 0 || moving[targetIdx] {
		insertMoved()
	}

	a.Members = reordered
	for _, s := range a.Symbols {
		if s.MemberIndex == UnresolvedMemberIndex {
			continue
		}
		if newIdx, ok := oldToNew[int(s.MemberIndex)]; ok {
			s.MemberIndex = uint64(newIdx)
		}
	}
	a.rebuildIndex()
	return nil
}

// Delete removes each named member, repairing SymbolRef member indices per the deletion
// invariant. Names not present in the archive are silently skipped.
func (a *Archive) Delete(names []string) error {
	for _, n := range names {
		if idx := a.IndexOf([]byte(n)); idx >= 0 {
			a.removeMemberAt(idx)
		}
	}
	return nil
}

// Extract writes each named member's payload to a file of the same basename in the archive's
// directory. It always fails on a GNU-thin archive, which has no payloads of its own to extract.
func (a *Archive) Extract(names []string) error {
	if a.Dialect == DialectGNUThin {
		return ErrExtractingFromThin
	}
	for _, n := range names {
		idx := a.IndexOf([]byte(n))
		if idx < 0 {
			continue
		}
		m := a.Members[idx]
		path := filepath.Join(a.Dir, string(m.Name))
		if err := os.WriteFile(path, m.Payload, 0o644); err != nil {
			return wrapIO(opWriting, path, err)
		}
	}
	return nil
}

// Names returns every member's basename in archive order, the data backing both List and
// print_names.
func (a *Archive) Names() []string {
	out := make([]string, len(a.Members))
	for i, m := range a.Members {
		out[i] = string(m.Name)
	}
	return out
}

// PrintNames streams one basename per line, in archive order.
func (a *Archive) PrintNames(w io.Writer) error {
	for _, name := range a.Names() {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return wrapIO(opWriting, "-", err)
		}
	}
	return nil
}

// PrintContents streams every member's raw payload bytes, concatenated in archive order.
func (a *Archive) PrintContents(w io.Writer) error {
	for _, m := range a.Members {
		if _, err := w.Write(m.Payload); err != nil {
			return wrapIO(opWriting, "-", err)
		}
	}
	return nil
}

// PrintSymbols streams one symbol name per line, in symbol-table order.
func (a *Archive) PrintSymbols(w io.Writer) error {
	for _, s := range a.Symbols {
		if _, err := fmt.Fprintln(w, string(s.Name)); err != nil {
			return wrapIO(opWriting, "-", err)
		}
	}
	return nil
}

// Ranlib rebuilds the symbol directory from every member's current payload and marks the archive
// to carry a symbol table on the next write. It performs no other state change: callers still
// call WriteArchive themselves afterward. A member whose machine type isn't supported (or whose
// magic is truncated/malformed) contributes no symbols rather than aborting the whole rebuild.
func (a *Archive) Ranlib() error {
	a.Symbols = nil
	for i, m := range a.Members {
		candidates, err := extractObjectSymbols(m.Payload)
		if err != nil {
			if errors.Is(err, ErrNotSupportedMachine) || errors.Is(err, ErrNotObject) {
				continue
			}
			return err
		}
		for _, c := range candidates {
			a.Symbols = append(a.Symbols, &SymbolRef{
				Name:        append([]byte(nil), c.name...),
				MemberIndex: uint64(i),
			})
		}
	}
	a.Modifiers.BuildSymbolTable = true
	return nil
}
