package config

import (
	"errors"
	"fmt"

	"github.com/CompassSecurity/secretscrub/pkg/format"
)

// ParseMaxFileSize parses a human-readable size string (e.g., "500KB", "10MB") into bytes.
func ParseMaxFileSize(sizeStr string) (int64, error) {
	size, err := format.ParseHumanSize(sizeStr)
	if err != nil {
		return 0, fmt.Errorf("failed to parse max file size: %w", err)
	}
	if size < 0 {
		return 0, fmt.Errorf("max file size must not be negative, got %s", sizeStr)
	}
	return size, nil
}

// Validate checks option combinations that cannot work together.
func (o ScrubOptions) Validate() error {
	if o.DryRun && o.Stage {
		return errors.New("--stage cannot be combined with --dry-run")
	}
	if o.MaxFileSize < 0 {
		return fmt.Errorf("max file size must not be negative, got %d", o.MaxFileSize)
	}
	return nil
}
