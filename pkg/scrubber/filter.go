package scrubber

import "strings"

// RelevantFileNames are the substrings that mark a path as a config file worth scanning.
var RelevantFileNames = []string{
	"Info.plist",
	"AndroidManifest.xml",
	"index.html",
	"google-services.json",
	"GoogleService-Info.plist",
}

const plistSuffix = "Info.plist"

// FilterRelevant keeps the paths containing one of RelevantFileNames, preserving order.
func FilterRelevant(paths []string) []string {
	relevant := []string{}
	for _, path := range paths {
		for _, name := range RelevantFileNames {
			if strings.Contains(path, name) {
				relevant = append(relevant, path)
				break
			}
		}
	}
	return relevant
}

// IsPlist reports whether path is handled by the structured plist scan.
func IsPlist(path string) bool {
	return strings.HasSuffix(path, plistSuffix)
}
