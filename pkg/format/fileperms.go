package format

import "io/fs"

// File permission constants used when the scrubber creates files.
// Rewritten config files keep their existing mode.
const (
	// FilePublicRead is the fallback mode for rewritten config files (rw-r--r--)
	FilePublicRead fs.FileMode = 0644

	// FileUserReadWrite is for log files, which may contain masked findings (rw-------)
	FileUserReadWrite fs.FileMode = 0600
)
