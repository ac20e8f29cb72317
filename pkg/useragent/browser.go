package useragent

import (
	"regexp"
	"strings"
)

// Browser holds the detected browser identity.
// On iOS every browser runs on WebKit and reports itself as Safari, so Name
// holds the reported engine identity while Actual holds the wrapping app
// (Chrome for CriOS, Firefox for FxiOS, ...). Off iOS, Actual equals Name.
type Browser struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Actual  string `json:"actual" yaml:"actual"`
}

// Major returns the major component of the version, or VersionUnknown.
func (b Browser) Major() string {
	if b.Version == "" || b.Version == VersionUnknown {
		return VersionUnknown
	}
	major, _, _ := strings.Cut(b.Version, ".")
	return major
}

// browserRule is one entry of an ordered signature table.
// Excludes plays the role of a negative lookahead, which RE2 lacks:
// a UA containing any excluded token does not match the rule.
type browserRule struct {
	name     string
	actual   string
	match    *regexp.Regexp
	excludes []string
	version  *regexp.Regexp
}

func (r browserRule) matches(ua, lowerUA string) bool {
	if !r.match.MatchString(ua) {
		return false
	}
	for _, ex := range r.excludes {
		if strings.Contains(lowerUA, ex) {
			return false
		}
	}
	return true
}

var iosPattern = regexp.MustCompile(`(?i)iphone|ipad|ipod`)

// iosRules is checked before anything else on iOS devices.
var iosRules = []browserRule{
	{
		name:    BrowserSafari,
		actual:  BrowserChrome,
		match:   regexp.MustCompile(`(?i)crios/`),
		version: regexp.MustCompile(`(?i)crios/([\d.]+)`),
	},
	{
		name:    BrowserSafari,
		actual:  BrowserFirefox,
		match:   regexp.MustCompile(`(?i)fxios/`),
		version: regexp.MustCompile(`(?i)fxios/([\d.]+)`),
	},
	{
		name:    BrowserSafari,
		actual:  BrowserEdge,
		match:   regexp.MustCompile(`(?i)edgios/`),
		version: regexp.MustCompile(`(?i)edgios/([\d.]+)`),
	},
	{
		name:    BrowserSafari,
		actual:  BrowserOpera,
		match:   regexp.MustCompile(`(?i)opios/|opt/`),
		version: regexp.MustCompile(`(?i)(?:opios|opt)/([\d.]+)`),
	},
	{
		name:    BrowserSafari,
		actual:  BrowserSafari,
		match:   regexp.MustCompile(`(?i)safari|applewebkit`),
		version: regexp.MustCompile(`(?i)version/([\d.]+)`),
	},
}

// browserRules is the off-iOS signature table in evaluation order.
var browserRules = []browserRule{
	{
		name:     BrowserChrome,
		match:    regexp.MustCompile(`(?i)chrome/`),
		excludes: []string{"edg/", "edge/", "edga/", "opr/", "opera", "samsungbrowser", "yabrowser", "vivaldi"},
		version:  regexp.MustCompile(`(?i)chrome/([\d.]+)`),
	},
	{
		name:     BrowserFirefox,
		match:    regexp.MustCompile(`(?i)firefox/`),
		excludes: []string{"seamonkey", "opera"},
		version:  regexp.MustCompile(`(?i)firefox/([\d.]+)`),
	},
	{
		name:    BrowserEdge,
		match:   regexp.MustCompile(`(?i)edg(?:e|a)?/`),
		version: regexp.MustCompile(`(?i)edg(?:e|a)?/([\d.]+)`),
	},
	{
		name:     BrowserSafari,
		match:    regexp.MustCompile(`(?i)safari/`),
		excludes: []string{"chrome", "chromium", "android", "opr/", "opera", "samsungbrowser"},
		version:  regexp.MustCompile(`(?i)version/([\d.]+)`),
	},
	{
		name:    BrowserIE,
		match:   regexp.MustCompile(`(?i)msie |trident/`),
		version: regexp.MustCompile(`(?i)(?:msie |rv:)([\d.]+)`),
	},
	{
		name:    BrowserOpera,
		match:   regexp.MustCompile(`(?i)opr/|opera`),
		version: regexp.MustCompile(`(?i)(?:opr|version|opera)[/ ]([\d.]+)`),
	},
	{
		name:    BrowserSamsung,
		match:   regexp.MustCompile(`(?i)samsungbrowser/`),
		version: regexp.MustCompile(`(?i)samsungbrowser/([\d.]+)`),
	},
	{
		name:    BrowserYandex,
		match:   regexp.MustCompile(`(?i)yabrowser/`),
		version: regexp.MustCompile(`(?i)yabrowser/([\d.]+)`),
	},
	{
		name:    BrowserVivaldi,
		match:   regexp.MustCompile(`(?i)vivaldi/`),
		version: regexp.MustCompile(`(?i)vivaldi/([\d.]+)`),
	},
}

// BrowserRules returns the off-iOS rule names in evaluation order.
func BrowserRules() []string {
	names := make([]string, len(browserRules))
	for i, r := range browserRules {
		names[i] = r.name
	}
	return names
}

// ParseBrowser detects the browser name and its major.minor version.
func ParseBrowser(ua string) Browser {
	unknown := Browser{Name: BrowserUnknown, Version: VersionUnknown, Actual: BrowserUnknown}
	if ua == "" {
		return unknown
	}
	lowerUA := strings.ToLower(ua)

	rules := browserRules
	if iosPattern.MatchString(ua) {
		rules = iosRules
	}

	for _, rule := range rules {
		if !rule.matches(ua, lowerUA) {
			continue
		}
		version := majorMinor(extractVersion(ua, rule.version))
		if version == "" {
			version = VersionUnknown
		}
		actual := rule.actual
		if actual == "" {
			actual = rule.name
		}
		return Browser{Name: rule.name, Version: version, Actual: actual}
	}

	return unknown
}

// extractVersion returns the first capture group of regex, capped at 20 chars.
func extractVersion(ua string, regex *regexp.Regexp) string {
	if regex == nil {
		return ""
	}
	matches := regex.FindStringSubmatch(ua)
	if len(matches) > 1 {
		version := matches[1]
		if len(version) > 20 {
			version = version[:20]
		}
		return strings.TrimRight(version, "._")
	}
	return ""
}

// majorMinor reduces "90.0.4430.210" to "90.0".
func majorMinor(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) >= 2 {
		return parts[0] + "." + parts[1]
	}
	return version
}
