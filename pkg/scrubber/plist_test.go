package scrubber

import (
	"strings"
	"testing"

	"github.com/CompassSecurity/secretscrub/pkg/config"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func infoPlist(clientID string, schemes ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleName</key>
	<string>Runner</string>
	<key>GIDClientID</key>
	<string>` + clientID + `</string>
	<key>CFBundleURLTypes</key>
	<array>
		<dict>
			<key>CFBundleTypeRole</key>
			<string>Editor</string>
			<key>CFBundleURLSchemes</key>
			<array>
`)
	for _, scheme := range schemes {
		b.WriteString("\t\t\t\t<string>" + scheme + "</string>\n")
	}
	b.WriteString(`			</array>
		</dict>
	</array>
	<key>UIRequiresFullScreen</key>
	<true/>
</dict>
</plist>
`)
	return b.String()
}

// plistValues parses the plist on disk and returns the GIDClientID value and URL schemes.
func plistValues(t *testing.T, path string) (string, []string) {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(path), "plist must stay valid XML")

	clientID := ""
	children := doc.Root().SelectElement("dict").ChildElements()
	for i, child := range children {
		if child.Tag == "key" && child.Text() == "GIDClientID" && i+1 < len(children) {
			clientID = children[i+1].Text()
		}
	}

	schemes := []string{}
	for _, el := range doc.FindElements("//array/dict/array/string") {
		schemes = append(schemes, el.Text())
	}
	return clientID, schemes
}

func TestCheckPlistFileReplacesClientIDs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ios/Runner/Info.plist", infoPlist(testClientID, testClientIDReversed, "myapp"))

	s, out := newTestScrubber(config.DefaultScrubOptions())
	res := s.CheckPlistFile(path)

	require.NoError(t, res.Err)
	assert.True(t, res.Clean)
	assert.True(t, res.Modified)
	assert.Equal(t, []string{path}, s.Modified)
	assert.Contains(t, out.String(), "✅ Info.plist auto-replaced: "+path)

	clientID, schemes := plistValues(t, path)
	assert.Equal(t, "$(GOOGLE_IOS_CLIENT_ID)", clientID)
	assert.Equal(t, []string{"$(GOOGLE_IOS_CLIENT_ID_REVERSED)", "myapp"}, schemes)

	content := readFile(t, path)
	assert.True(t, strings.HasPrefix(content, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, content, "<!DOCTYPE plist")
	assert.Contains(t, content, "<true/>")
	assert.NotContains(t, content, testClientID)
	assert.NotContains(t, content, testClientIDReversed)

	assert.Equal(t, []string{
		"\n📁 " + path + ":",
		"  🔍 Hardcoded GIDClientID found: 1234....com",
		"  ✅ Replaced with environment variable: $(GOOGLE_IOS_CLIENT_ID)",
		"  🔍 Hardcoded CFBundleURLSchemes found: com....2345",
		"  ✅ Replaced with environment variable: $(GOOGLE_IOS_CLIENT_ID_REVERSED)",
	}, s.Issues)
}

func TestCheckPlistFileMalformed(t *testing.T) {
	dir := t.TempDir()
	original := "<plist version=\"1.0\">\n<dict>\n\t<key>GIDClientID</key>\n\t<string>" + testClientID + "</dict>\n</plist>\n"
	path := writeFile(t, dir, "ios/Runner/Info.plist", original)

	s, out := newTestScrubber(config.DefaultScrubOptions())
	res := s.CheckPlistFile(path)

	assert.False(t, res.Clean)
	require.Error(t, res.Err)
	assert.Contains(t, out.String(), "❌ XML parse error "+path)
	assert.Equal(t, original, readFile(t, path), "malformed plist must not be written")
	assert.Empty(t, s.Modified)
}

func TestCheckPlistFileEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ios/Runner/Info.plist", "")

	s, _ := newTestScrubber(config.DefaultScrubOptions())
	res := s.CheckPlistFile(path)

	assert.False(t, res.Clean)
	assert.ErrorIs(t, res.Err, errNoRootElement)
}

func TestCheckPlistFileUntouched(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no dict", content: `<?xml version="1.0"?><plist version="1.0"><array/></plist>`},
		{name: "already replaced", content: infoPlist("$(GOOGLE_IOS_CLIENT_ID)", "$(GOOGLE_IOS_CLIENT_ID_REVERSED)")},
		{name: "client id not at start", content: infoPlist("prefix-" + testClientID)},
		{name: "client id under other key", content: strings.Replace(infoPlist(testClientID), "<key>GIDClientID</key>", "<key>OtherClientID</key>", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "ios/Runner/Info.plist", tt.content)

			s, _ := newTestScrubber(config.DefaultScrubOptions())
			res := s.CheckPlistFile(path)

			assert.True(t, res.Clean)
			assert.False(t, res.Modified)
			assert.Empty(t, s.Issues)
			assert.Empty(t, s.Modified)
			assert.Equal(t, tt.content, readFile(t, path))
		})
	}
}

func TestCheckPlistFileMissing(t *testing.T) {
	s, _ := newTestScrubber(config.DefaultScrubOptions())
	res := s.CheckPlistFile(t.TempDir() + "/ios/Runner/Info.plist")
	assert.True(t, res.Clean)
	assert.NoError(t, res.Err)
}

func TestCheckPlistFileAddsDeclaration(t *testing.T) {
	dir := t.TempDir()
	content := strings.SplitN(infoPlist(testClientID), "\n", 2)[1]
	path := writeFile(t, dir, "ios/Runner/Info.plist", content)

	s, _ := newTestScrubber(config.DefaultScrubOptions())
	s.CheckPlistFile(path)

	written := readFile(t, path)
	assert.True(t, strings.HasPrefix(written, `<?xml version="1.0" encoding="UTF-8"?>`+"\n<!DOCTYPE plist"))
	clientID, _ := plistValues(t, path)
	assert.Equal(t, "$(GOOGLE_IOS_CLIENT_ID)", clientID)
}

func TestCheckPlistFileDryRun(t *testing.T) {
	dir := t.TempDir()
	content := infoPlist(testClientID, testClientIDReversed)
	path := writeFile(t, dir, "ios/Runner/Info.plist", content)

	opts := config.DefaultScrubOptions()
	opts.DryRun = true
	s, _ := newTestScrubber(opts)
	res := s.CheckPlistFile(path)

	assert.True(t, res.Clean)
	assert.False(t, res.Modified)
	assert.Equal(t, content, readFile(t, path))
	assert.Equal(t, []string{path}, s.Pending)
	assert.Len(t, s.Findings, 2)
}

func TestCheckPlistFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ios/Runner/Info.plist", infoPlist(testClientID, testClientIDReversed))

	first, _ := newTestScrubber(config.DefaultScrubOptions())
	first.CheckPlistFile(path)
	replaced := readFile(t, path)

	second, _ := newTestScrubber(config.DefaultScrubOptions())
	res := second.CheckPlistFile(path)

	assert.True(t, res.Clean)
	assert.False(t, res.Modified)
	assert.Empty(t, second.Issues)
	assert.Equal(t, replaced, readFile(t, path))
}
