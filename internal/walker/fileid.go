package walker

// fileID identifies a directory across paths for the loop and
// same-filesystem checks.
type fileID struct {
	dev uint64
	ino uint64
}
