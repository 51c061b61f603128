// Package locate describes where inside a structured file a secret was found.
// The descriptions are hints for the structured log only; replacements always
// operate on the raw text.
package locate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// Locator maps a secret value to a human readable location inside one file.
type Locator interface {
	Locate(secret string) string
}

type noopLocator struct{}

func (noopLocator) Locate(string) string { return "" }

// ForFile returns a locator suitable for the file type of path.
func ForFile(path string, content string) Locator {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if !gjson.Valid(content) {
			log.Debug().Str("file", path).Msg("Content is not valid JSON, no location hints")
			return noopLocator{}
		}
		return jsonLocator{root: gjson.Parse(content)}
	case ".html", ".htm":
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
		if err != nil {
			log.Debug().Err(err).Str("file", path).Msg("Failed parsing HTML, no location hints")
			return noopLocator{}
		}
		return htmlLocator{doc: doc}
	default:
		return noopLocator{}
	}
}

type jsonLocator struct {
	root gjson.Result
}

// Locate returns the gjson path of the first string value containing secret.
func (l jsonLocator) Locate(secret string) string {
	path, _ := findJSONPath(l.root, "", secret)
	return path
}

func findJSONPath(node gjson.Result, prefix string, secret string) (string, bool) {
	if node.Type == gjson.String {
		return prefix, strings.Contains(node.Str, secret)
	}
	if !node.IsObject() && !node.IsArray() {
		return "", false
	}

	var found string
	ok := false
	index := 0
	node.ForEach(func(key, value gjson.Result) bool {
		segment := key.String()
		if node.IsArray() {
			segment = fmt.Sprint(index)
			index++
		} else {
			segment = escapeJSONPathSegment(segment)
		}
		childPath := segment
		if prefix != "" {
			childPath = prefix + "." + segment
		}
		found, ok = findJSONPath(value, childPath, secret)
		return !ok
	})
	return found, ok
}

var jsonPathEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)

func escapeJSONPathSegment(segment string) string {
	return jsonPathEscaper.Replace(segment)
}

type htmlLocator struct {
	doc *goquery.Document
}

// Locate returns a selector-like description of the first element whose
// attributes or own text contain secret.
func (l htmlLocator) Locate(secret string) string {
	var location string
	l.doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range s.Get(0).Attr {
			if strings.Contains(attr.Val, secret) {
				location = describeElement(s, attr.Key)
				return false
			}
		}
		if strings.Contains(ownText(s), secret) {
			location = describeElement(s, "")
			return false
		}
		return true
	})
	return location
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return b.String()
}

// describeElement renders tag[name=...][id=...] plus the attribute holding the secret.
func describeElement(s *goquery.Selection, attr string) string {
	parts := []string{goquery.NodeName(s)}
	for _, key := range []string{"id", "name"} {
		if val, ok := s.Attr(key); ok && key != attr {
			parts = append(parts, fmt.Sprintf("[%s=%s]", key, val))
		}
	}
	if attr != "" {
		parts = append(parts, "@"+attr)
	}
	return strings.Join(parts, "")
}
