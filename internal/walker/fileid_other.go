//go:build !unix

package walker

import "errors"

var errNoFileID = errors.New("device and inode numbers are not available on this platform")

// Without file ids the loop and same-filesystem checks are skipped.
var statFileID = func(path string) (fileID, error) {
	return fileID{}, errNoFileID
}
