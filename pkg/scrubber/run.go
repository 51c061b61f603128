package scrubber

import (
	"fmt"
	"io"

	"github.com/CompassSecurity/secretscrub/pkg/config"
	"github.com/CompassSecurity/secretscrub/pkg/gitstage"
	"github.com/rs/zerolog/log"
)

// Process exit codes returned by Run.
const (
	// ExitOK means nothing is left to fix
	ExitOK = 0
	// ExitFailure means a secret remains or a replacement is pending
	ExitFailure = 1
)

// Run scrubs the relevant files among paths, prints the report to out and
// returns the process exit code.
func Run(opts config.ScrubOptions, paths []string, out io.Writer) int {
	fmt.Fprintln(out, "🔍 Starting sensitive data scan...")

	relevant := FilterRelevant(paths)
	if len(relevant) == 0 {
		fmt.Fprintln(out, "✅ No relevant files to scan.")
		return ExitOK
	}

	fmt.Fprintf(out, "📁 Files to scan: %d\n", len(relevant))
	for _, path := range relevant {
		fmt.Fprintf(out, "  - %s\n", path)
	}

	s := New(opts, out)
	allClean := s.CheckFiles(relevant)
	s.PrintSummary(out)

	log.Debug().Int("issues", len(s.Findings)).Int("modified", len(s.Modified)).Int("pending", len(s.Pending)).Bool("allClean", allClean).Msg("Scan finished")

	switch {
	case len(s.Pending) > 0:
		fmt.Fprintln(out, "\n❌ Sensitive data found, run without --dry-run to replace it with environment variables.")
		return ExitFailure
	case !allClean && len(s.Modified) == 0:
		fmt.Fprintln(out, "\n❌ Sensitive data found that cannot be replaced automatically.")
		fmt.Fprintln(out, "Please move it to environment variables manually.")
		return ExitFailure
	case len(s.Modified) > 0:
		if opts.Stage {
			if err := gitstage.Stage(".", s.Modified); err != nil {
				log.Error().Err(err).Msg("Failed staging modified files")
				fmt.Fprintf(out, "\n❌ Failed staging modified files: %v\n", err)
				return ExitFailure
			}
			fmt.Fprintf(out, "\n📌 Staged %d modified file(s).\n", len(s.Modified))
		}
		fmt.Fprintln(out, "\n✅ Sensitive data was replaced with environment variables.")
		return ExitOK
	default:
		fmt.Fprintln(out, "\n✅ No sensitive data found.")
		return ExitOK
	}
}
