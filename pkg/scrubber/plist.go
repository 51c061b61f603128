package scrubber

import (
	"errors"
	"fmt"
	"os"

	"github.com/CompassSecurity/secretscrub/pkg/format"
	"github.com/CompassSecurity/secretscrub/pkg/scrubber/rules"
	"github.com/CompassSecurity/secretscrub/pkg/scrubber/types"
	"github.com/beevik/etree"
	"github.com/rs/zerolog/log"
)

const (
	plistKeyClientID   = "GIDClientID"
	plistKeyURLTypes   = "CFBundleURLTypes"
	plistKeyURLSchemes = "CFBundleURLSchemes"
)

var errNoRootElement = errors.New("document has no root element")

// CheckPlistFile edits the GIDClientID value and the CFBundleURLSchemes entries
// of an Info.plist in place. Only a malformed document makes the file unclean.
func (s *Scrubber) CheckPlistFile(path string) types.FileResult {
	if !format.Exists(path) {
		log.Debug().Str("file", path).Msg("File does not exist, skipping")
		return types.FileResult{Clean: true}
	}

	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalText = true
	err := doc.ReadFromFile(path)
	if err == nil && doc.Root() == nil {
		err = errNoRootElement
	}
	if err != nil {
		s.printf("❌ XML parse error %s: %v\n", path, err)
		return types.FileResult{Clean: false, Err: fmt.Errorf("failed parsing %s: %w", path, err)}
	}

	dict := doc.Root().SelectElement("dict")
	if dict == nil {
		log.Debug().Str("file", path).Msg("No top level dict in plist")
		return types.FileResult{Clean: true}
	}

	edit := &plistEdit{scrubber: s, path: path}
	children := dict.ChildElements()
	for i, child := range children {
		if child.Tag != "key" {
			continue
		}

		switch child.Text() {
		case plistKeyClientID:
			if value := valueOf(children, i, "string"); value != nil {
				edit.replace(value, rules.GoogleClientID, plistKeyClientID)
			}
		case plistKeyURLTypes:
			if urlTypes := valueOf(children, i, "array"); urlTypes != nil {
				edit.replaceURLSchemes(urlTypes)
			}
		}
	}

	if len(edit.issues) > 0 {
		s.Issues = append(s.Issues, fileHeader(path))
		s.Issues = append(s.Issues, edit.issues...)
	}

	if !edit.modified {
		return types.FileResult{Clean: true}
	}

	if s.opts.DryRun {
		s.Pending = append(s.Pending, path)
		s.printf("📝 Would auto-replace Info.plist: %s\n", path)
		return types.FileResult{Clean: true}
	}

	if err := writePlist(doc, path); err != nil {
		return s.fail(path, err)
	}
	s.Modified = append(s.Modified, path)
	s.printf("✅ Info.plist auto-replaced: %s\n", path)
	return types.FileResult{Clean: true, Modified: true}
}

// valueOf returns the sibling right after the key at index i when it has the wanted tag.
func valueOf(siblings []*etree.Element, i int, tag string) *etree.Element {
	if i+1 < len(siblings) && siblings[i+1].Tag == tag {
		return siblings[i+1]
	}
	return nil
}

type plistEdit struct {
	scrubber *Scrubber
	path     string
	issues   []string
	modified bool
}

func (e *plistEdit) replaceURLSchemes(urlTypes *etree.Element) {
	for _, urlType := range urlTypes.SelectElements("dict") {
		entries := urlType.ChildElements()
		for j, entry := range entries {
			if entry.Tag != "key" || entry.Text() != plistKeyURLSchemes {
				continue
			}
			schemes := valueOf(entries, j, "array")
			if schemes == nil {
				continue
			}
			for _, scheme := range schemes.SelectElements("string") {
				e.replace(scheme, rules.GoogleClientIDReversed, plistKeyURLSchemes)
			}
		}
	}
}

// replace swaps the element text for the placeholder when it starts with a match of the pattern.
func (e *plistEdit) replace(value *etree.Element, patternName string, key string) {
	s := e.scrubber
	pattern, ok := s.rules.Pattern(patternName)
	if !ok {
		return
	}

	text := value.Text()
	if text == "" || !pattern.MatchesPrefix(text) {
		return
	}

	finding := types.Finding{Pattern: pattern.PatternElement, File: e.path, Text: text, Location: key}
	e.issues = append(e.issues, fmt.Sprintf("  🔍 Hardcoded %s found: %s", key, format.MaskSecret(text)))

	if placeholder, ok := s.rules.PlistReplacementFor(e.path, patternName); ok {
		value.SetText(placeholder)
		finding.Replacement = placeholder
		e.modified = true
		e.issues = append(e.issues, fmt.Sprintf("  ✅ Replaced with environment variable: %s", placeholder))
	}

	s.record(finding)
}

func writePlist(doc *etree.Document, path string) error {
	ensureXMLDeclaration(doc)
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("failed serializing %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, format.FileModeOr(path, format.FilePublicRead)); err != nil {
		return fmt.Errorf("failed writing %s: %w", path, err)
	}
	return nil
}

func ensureXMLDeclaration(doc *etree.Document) {
	for _, token := range doc.Child {
		if pi, ok := token.(*etree.ProcInst); ok && pi.Target == "xml" {
			return
		}
	}
	doc.InsertChildAt(0, etree.NewText("\n"))
	doc.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`))
}
