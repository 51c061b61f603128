// Package config provides the scrubber's run options and their validation helpers.
package config

// DefaultMaxFileSize disables the size limit, every relevant file is scanned.
const DefaultMaxFileSize = "0"

// ScrubOptions contains the settings of one scrub run.
type ScrubOptions struct {
	// DryRun reports replacements without writing files
	DryRun bool
	// Stage adds rewritten files to the git index
	Stage bool
	// MaxFileSize is the largest file (in bytes) the text scanner reads, 0 disables the limit
	MaxFileSize int64
}

// DefaultScrubOptions returns the options used when no flags are given.
func DefaultScrubOptions() ScrubOptions {
	size, _ := ParseMaxFileSize(DefaultMaxFileSize)
	return ScrubOptions{
		DryRun:      false,
		Stage:       false,
		MaxFileSize: size,
	}
}
