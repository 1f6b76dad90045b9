package ar

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// HostDialect returns the archive dialect this system's native `ar` would produce, used to
// resolve DialectAmbiguous at write time.
func HostDialect() Dialect {
	switch runtime.GOOS {
	case "darwin":
		return DialectDarwin
	case "windows":
		return DialectCOFF
	default:
		return DialectGNU
	}
}

// readSiblingFile dereferences a GNU-thin member's basename against the archive's containing
// directory, since thin archives store no payloads on disk.
func readSiblingFile(dir string, name string) ([]byte, error) {
	path := filepath.Join(dir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapIO(opReading, path, err)
	}
	return b, nil
}

// hostMetadata is the uid/gid/mode/mtime an inserted file carries when
// use_real_timestamps_and_ids is set. It is read via golang.org/x/sys/unix's Stat_t rather than a
// raw syscall.Stat_t type assertion off os.FileInfo.Sys().
type hostMetadata struct {
	ModTime Timestamp
	Uid     int64
	Gid     int64
	Mode    int64
}

func statHostFile(path string) (hostMetadata, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return hostMetadata{}, wrapIO(opAccessing, path, err)
	}
	return hostMetadata{
		ModTime: TimestampFromTime(time.Unix(st.Mtim.Sec, st.Mtim.Nsec)),
		Uid:     int64(st.Uid),
		Gid:     int64(st.Gid),
		Mode:    int64(st.Mode & 0o7777),
	}, nil
}

// wallClockSeconds returns the current time, used to timestamp a freshly built symbol table when
// use_real_timestamps_and_ids is set.
func wallClockSeconds() int64 {
	return time.Now().Unix()
}
