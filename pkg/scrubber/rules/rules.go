package rules

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/CompassSecurity/secretscrub/pkg/scrubber/types"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	GoogleClientID         = "google_client_id"
	GoogleClientIDReversed = "google_client_id_reversed"
	FirebaseAPIKey         = "firebase_api_key"
	FirebaseAppID          = "firebase_app_id"
)

// IOSInfoPlist is the replacement entry every Info.plist falls back to.
const IOSInfoPlist = "ios/Runner/Info.plist"

//go:embed rules.yml
var defaultRules []byte

// CompiledPattern is a pattern from the rules file with its regex compiled.
type CompiledPattern struct {
	types.PatternElement
	Regex *regexp.Regexp
	// Prefix only matches at the start of the input.
	Prefix *regexp.Regexp
}

// Name returns the pattern name used in reports and replacement rules.
func (p CompiledPattern) Name() string {
	return p.Pattern.Name
}

// MatchesPrefix reports whether value starts with a match of the pattern.
func (p CompiledPattern) MatchesPrefix(value string) bool {
	return p.Prefix.MatchString(value)
}

// RuleSet holds the compiled patterns in rules file order and the per-path replacements.
type RuleSet struct {
	patterns     []CompiledPattern
	replacements []types.ReplacementRule
}

var (
	defaultSet     *RuleSet
	defaultSetOnce sync.Once
)

// Default returns the rule set shipped with the binary. It is parsed once and never modified.
func Default() *RuleSet {
	defaultSetOnce.Do(func() {
		set, err := Load(defaultRules)
		if err != nil {
			log.Fatal().Stack().Err(err).Msg("Failed loading embedded rules")
		}
		log.Debug().Int("patterns", len(set.patterns)).Int("replacementFiles", len(set.replacements)).Msg("Loaded rules")
		defaultSet = set
	})
	return defaultSet
}

// Load parses and compiles a rules document.
func Load(data []byte) (*RuleSet, error) {
	var raw types.SecretsPatterns
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed unmarshalling rules: %w", err)
	}

	set := &RuleSet{replacements: raw.Replacements}
	seen := map[string]bool{}
	for _, p := range raw.Patterns {
		name := p.Pattern.Name
		if name == "" {
			return nil, fmt.Errorf("pattern with regex %q has no name", p.Pattern.Regex)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate pattern %q", name)
		}
		seen[name] = true

		re, err := regexp.Compile(p.Pattern.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed compiling regex of %s: %w", name, err)
		}
		prefix, err := regexp.Compile(`^(?:` + p.Pattern.Regex + `)`)
		if err != nil {
			return nil, fmt.Errorf("failed compiling anchored regex of %s: %w", name, err)
		}
		set.patterns = append(set.patterns, CompiledPattern{PatternElement: p, Regex: re, Prefix: prefix})
	}

	for _, r := range set.replacements {
		for name := range r.Placeholders {
			if !seen[name] {
				return nil, fmt.Errorf("replacement for %s references unknown pattern %q", r.Path, name)
			}
		}
	}

	return set, nil
}

// Patterns returns the compiled patterns in evaluation order.
func (s *RuleSet) Patterns() []CompiledPattern {
	return s.patterns
}

// Pattern looks a pattern up by name.
func (s *RuleSet) Pattern(name string) (CompiledPattern, bool) {
	for _, p := range s.patterns {
		if p.Name() == name {
			return p, true
		}
	}
	return CompiledPattern{}, false
}

// ReplacementFor returns the placeholder configured for the file and pattern.
func (s *RuleSet) ReplacementFor(path string, patternName string) (string, bool) {
	rule, ok := s.ruleFor(path)
	if !ok {
		return "", false
	}
	placeholder, ok := rule.Placeholders[patternName]
	return placeholder, ok
}

// PlistReplacementFor is ReplacementFor with a fallback to the iOS Info.plist
// entry, so plists outside ios/Runner get the same placeholders.
func (s *RuleSet) PlistReplacementFor(path string, patternName string) (string, bool) {
	if placeholder, ok := s.ReplacementFor(path, patternName); ok {
		return placeholder, true
	}
	return s.ReplacementFor(IOSInfoPlist, patternName)
}

// HasReplacements reports whether any replacement is configured for the file.
func (s *RuleSet) HasReplacements(path string) bool {
	_, ok := s.ruleFor(path)
	return ok
}

func (s *RuleSet) ruleFor(path string) (types.ReplacementRule, bool) {
	slashed := filepath.ToSlash(path)
	for _, r := range s.replacements {
		if slashed == r.Path || strings.HasSuffix(slashed, "/"+r.Path) {
			return r, true
		}
	}
	return types.ReplacementRule{}, false
}
