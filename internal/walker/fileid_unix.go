//go:build unix

package walker

import "golang.org/x/sys/unix"

// statFileID follows symlinks.
var statFileID = func(path string) (fileID, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileID{}, err
	}
	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, nil
}
