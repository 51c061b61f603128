package result

import (
	"github.com/CompassSecurity/secretscrub/pkg/format"
	"github.com/CompassSecurity/secretscrub/pkg/logging"
	"github.com/CompassSecurity/secretscrub/pkg/scrubber/types"
)

// ReportFinding emits a hit-level log event for a finding. The secret is always masked.
func ReportFinding(finding types.Finding, action logging.Action) {
	event := logging.Hit().
		Str("action", string(action)).
		Str("confidence", finding.Pattern.Pattern.Confidence).
		Str("ruleName", finding.Pattern.Pattern.Name).
		Str("value", format.MaskSecret(finding.Text)).
		Str("file", finding.File)

	if finding.Replacement != "" {
		event = event.Str("replacement", finding.Replacement)
	}
	if finding.Location != "" {
		event = event.Str("location", finding.Location)
	}

	event.Msg("SECRET")
}

// ActionFor derives the reported action for a finding.
func ActionFor(finding types.Finding, dryRun bool) logging.Action {
	switch {
	case !finding.Replaced():
		return logging.ActionUnresolved
	case dryRun:
		return logging.ActionPending
	default:
		return logging.ActionReplaced
	}
}
