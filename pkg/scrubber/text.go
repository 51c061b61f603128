package scrubber

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/CompassSecurity/secretscrub/pkg/format"
	"github.com/CompassSecurity/secretscrub/pkg/scrubber/locate"
	"github.com/CompassSecurity/secretscrub/pkg/scrubber/types"
	"github.com/h2non/filetype"
	"github.com/rs/zerolog/log"
)

// CheckFile scans a plain text file and replaces every match that has a
// configured placeholder. The file counts as clean when nothing matched or
// when its content was changed, even if some matches had no placeholder.
func (s *Scrubber) CheckFile(path string) types.FileResult {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("file", path).Msg("File does not exist, skipping")
		return types.FileResult{Clean: true}
	}
	if err != nil {
		return s.fail(path, fmt.Errorf("failed reading %s: %w", path, err))
	}
	if info.IsDir() {
		log.Debug().Str("file", path).Msg("Path is a directory, skipping")
		return types.FileResult{Clean: true}
	}
	// An unscanned file never counts as clean.
	if s.opts.MaxFileSize > 0 && info.Size() > s.opts.MaxFileSize {
		log.Warn().Str("file", path).Str("size", format.HumanSize(info.Size())).Str("limit", format.HumanSize(s.opts.MaxFileSize)).Msg("File exceeds max file size, not scanned")
		return s.fail(path, fmt.Errorf("%s exceeds max file size of %s and was not scanned", path, format.HumanSize(s.opts.MaxFileSize)))
	}

	// #nosec G304 - paths are handed in by the pre-commit hook, the user controls their own checkout
	data, err := os.ReadFile(path)
	if err != nil {
		return s.fail(path, fmt.Errorf("failed reading %s: %w", path, err))
	}
	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		log.Debug().Str("file", path).Str("type", kind.MIME.Value).Msg("File is binary, skipping")
		return types.FileResult{Clean: true}
	}
	if !utf8.Valid(data) {
		log.Debug().Str("file", path).Msg("File is not UTF-8 text, skipping")
		return types.FileResult{Clean: true}
	}

	original := string(data)
	content := original
	locator := locate.ForFile(path, original)
	issues := []string{}

	for _, pattern := range s.rules.Patterns() {
		for _, match := range pattern.Regex.FindAllString(content, -1) {
			issues = append(issues, fmt.Sprintf("  🔍 Found %s: %s", pattern.Name(), format.MaskSecret(match)))
			finding := types.Finding{
				Pattern:  pattern.PatternElement,
				File:     path,
				Text:     match,
				Location: locator.Locate(match),
			}

			if placeholder, ok := s.rules.ReplacementFor(path, pattern.Name()); ok {
				content = strings.ReplaceAll(content, match, placeholder)
				finding.Replacement = placeholder
				issues = append(issues, fmt.Sprintf("  ✅ Auto-replaced with: %s", placeholder))
			}

			s.record(finding)
		}
	}

	changed := content != original
	if len(issues) > 0 && !s.rules.HasReplacements(path) {
		log.Warn().Str("file", path).Msg("No replacement rules for file, secrets must be moved to environment variables manually")
	}
	if len(issues) > 0 {
		s.Issues = append(s.Issues, fileHeader(path))
		s.Issues = append(s.Issues, issues...)
	}

	if changed {
		if s.opts.DryRun {
			s.Pending = append(s.Pending, path)
			s.printf("📝 Would auto-replace: %s\n", path)
		} else {
			if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
				return s.fail(path, fmt.Errorf("failed writing %s: %w", path, err))
			}
			s.Modified = append(s.Modified, path)
			s.printf("✅ Auto-replaced: %s\n", path)
		}
	}

	return types.FileResult{Clean: len(issues) == 0 || changed, Modified: changed && !s.opts.DryRun}
}

func (s *Scrubber) fail(path string, err error) types.FileResult {
	s.printf("❌ %v\n", err)
	return types.FileResult{Clean: false, Err: err}
}
