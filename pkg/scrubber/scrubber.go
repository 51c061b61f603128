// Package scrubber finds hardcoded secrets in mobile app config files and
// swaps them for placeholders that are resolved from the environment at
// build time.
package scrubber

import (
	"fmt"
	"io"
	"strings"

	"github.com/CompassSecurity/secretscrub/pkg/config"
	"github.com/CompassSecurity/secretscrub/pkg/scrubber/result"
	"github.com/CompassSecurity/secretscrub/pkg/scrubber/rules"
	"github.com/CompassSecurity/secretscrub/pkg/scrubber/types"
	"github.com/rs/zerolog/log"
)

// Scrubber accumulates the findings of one run. It is not safe for concurrent use.
type Scrubber struct {
	// Issues are the human readable report lines in discovery order.
	Issues []string
	// Modified are the files rewritten on disk.
	Modified []string
	// Pending are the files that would have been rewritten in dry-run mode.
	Pending  []string
	Findings []types.Finding

	opts  config.ScrubOptions
	rules *rules.RuleSet
	out   io.Writer
}

// New creates a Scrubber using the embedded rules. Progress messages are written to out.
func New(opts config.ScrubOptions, out io.Writer) *Scrubber {
	return NewWithRules(opts, rules.Default(), out)
}

// NewWithRules creates a Scrubber that evaluates ruleSet instead of the embedded rules.
func NewWithRules(opts config.ScrubOptions, ruleSet *rules.RuleSet, out io.Writer) *Scrubber {
	return &Scrubber{
		Issues:   []string{},
		Modified: []string{},
		Pending:  []string{},
		Findings: []types.Finding{},
		opts:     opts,
		rules:    ruleSet,
		out:      out,
	}
}

// CheckFiles scans every path and reports whether all of them are clean.
// A failing file does not stop the remaining ones from being processed.
func (s *Scrubber) CheckFiles(paths []string) bool {
	allClean := true

	for _, path := range paths {
		var res types.FileResult
		if IsPlist(path) {
			res = s.CheckPlistFile(path)
		} else {
			res = s.CheckFile(path)
		}

		if res.Err != nil {
			log.Error().Err(res.Err).Str("file", path).Msg("Failed scanning file")
		}
		log.Debug().Str("file", path).Bool("clean", res.Clean).Bool("modified", res.Modified).Msg("Scanned file")

		if !res.Clean {
			allClean = false
		}
	}

	return allClean
}

// PrintSummary writes the collected issues, the rewritten files and the staging hint.
func (s *Scrubber) PrintSummary(w io.Writer) {
	if len(s.Issues) > 0 {
		fmt.Fprintln(w, "\n🔒 Sensitive data scan results:")
		for _, issue := range s.Issues {
			fmt.Fprintln(w, issue)
		}
	}

	if len(s.Modified) > 0 {
		fmt.Fprintf(w, "\n✅ Auto-replaced files: %d\n", len(s.Modified))
		for _, path := range s.Modified {
			fmt.Fprintf(w, "  - %s\n", path)
		}
		fmt.Fprintln(w, "\n⚠️  Please re-stage the changed files:")
		fmt.Fprintf(w, "git add %s\n", strings.Join(s.Modified, " "))
	}

	if len(s.Pending) > 0 {
		fmt.Fprintf(w, "\n📝 Files with pending replacements (dry run): %d\n", len(s.Pending))
		for _, path := range s.Pending {
			fmt.Fprintf(w, "  - %s\n", path)
		}
	}
}

func (s *Scrubber) record(finding types.Finding) {
	s.Findings = append(s.Findings, finding)
	result.ReportFinding(finding, result.ActionFor(finding, s.opts.DryRun))
}

func (s *Scrubber) printf(format string, args ...any) {
	if s.out == nil {
		return
	}
	fmt.Fprintf(s.out, format, args...)
}

func fileHeader(path string) string {
	return fmt.Sprintf("\n📁 %s:", path)
}
