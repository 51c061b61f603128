package types

// SecretsPatterns is the on-disk shape of the rules file.
type SecretsPatterns struct {
	Patterns     []PatternElement  `yaml:"patterns" json:"patterns"`
	Replacements []ReplacementRule `yaml:"replacements" json:"replacements"`
}

// PatternElement wraps one pattern entry of the rules file.
type PatternElement struct {
	Pattern PatternPattern `yaml:"pattern" json:"pattern"`
}

// PatternPattern is a named secret regex with its confidence.
type PatternPattern struct {
	Name       string `yaml:"name" json:"name"`
	Regex      string `yaml:"regex" json:"regex"`
	Confidence string `yaml:"confidence" json:"confidence"`
}

// ReplacementRule maps pattern names to placeholders for files whose path ends in Path.
type ReplacementRule struct {
	Path         string            `yaml:"path" json:"path"`
	Placeholders map[string]string `yaml:"placeholders" json:"placeholders"`
}

// Finding is a single secret match inside a scanned file.
type Finding struct {
	Pattern     PatternElement
	File        string
	Text        string
	Replacement string
	Location    string
}

// Replaced reports whether a placeholder was substituted for the finding.
func (f Finding) Replaced() bool {
	return f.Replacement != ""
}

// FileResult is the outcome of scanning one file.
type FileResult struct {
	// Clean is true when nothing matched or the file content was rewritten.
	Clean    bool
	Modified bool
	// Err carries a structural failure such as a malformed plist.
	Err error
}
