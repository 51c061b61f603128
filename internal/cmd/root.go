package cmd

import (
	"errors"

	"github.com/CompassSecurity/secretscrub/internal/cmd/common"
	"github.com/CompassSecurity/secretscrub/pkg/config"
	"github.com/CompassSecurity/secretscrub/pkg/scrubber"
	"github.com/spf13/cobra"
)

var (
	dryRun      bool
	stage       bool
	maxFileSize string
)

// NewRootCmd builds the secretscrub command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "secretscrub <file> [file...]",
		Short: "🔒 Replace hardcoded mobile app secrets with environment placeholders",
		Long: `secretscrub scans Info.plist, AndroidManifest.xml, index.html, google-services.json and
GoogleService-Info.plist files for hardcoded Google OAuth client IDs and Firebase keys.
Known secrets are replaced in place with placeholders that are resolved at build time.

Run it as a pre-commit hook with the staged files as arguments. The exit code is 1 when
secrets remain that could not be replaced automatically.`,
		Example: `secretscrub ios/Runner/Info.plist web/index.html
git diff --cached --name-only | xargs secretscrub --stage`,
		Version:       common.Version,
		Args:          requireFiles,
		RunE:          runScrub,
	}

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report replacements without writing files, exits 1 if any replacement is pending")
	rootCmd.Flags().BoolVar(&stage, "stage", false, "Add rewritten files to the git index")
	rootCmd.Flags().StringVar(&maxFileSize, "max-file-size", config.DefaultMaxFileSize, "Refuse to scan files larger than this size, reported as a failure (e.g. 500KB, 10MB, 0 disables the limit)")

	common.AddCommonFlags(rootCmd)
	common.SetupPersistentPreRun(rootCmd)

	return rootCmd
}

func requireFiles(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errors.New("requires at least one file path")
	}
	return nil
}

func runScrub(cmd *cobra.Command, args []string) error {
	opts := config.DefaultScrubOptions()
	opts.DryRun = dryRun
	opts.Stage = stage

	size, err := config.ParseMaxFileSize(maxFileSize)
	if err != nil {
		return err
	}
	opts.MaxFileSize = size

	if err := opts.Validate(); err != nil {
		return err
	}

	cmd.SilenceUsage = true
	common.ExitCode = scrubber.Run(opts, args, cmd.OutOrStdout())
	return nil
}
