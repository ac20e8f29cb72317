package useragent

import (
	"regexp"
	"strings"
)

// OS describes the operating system reported by a user agent.
type OS struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Mobile  bool   `json:"mobile" yaml:"mobile"`
}

type osRule struct {
	name    string
	match   *regexp.Regexp
	version *regexp.Regexp
}

// osRules is evaluated top to bottom; the first match wins.
// Android precedes Linux because every Android UA also carries "Linux".
var osRules = []osRule{
	{
		name:    OSAndroid,
		match:   regexp.MustCompile(`(?i)android`),
		version: regexp.MustCompile(`(?i)android[\s/]?([\d._]+)`),
	},
	{
		name:    OSiOS,
		match:   regexp.MustCompile(`(?i)iphone|ipad|ipod`),
		version: regexp.MustCompile(`(?i)(?:iphone )?os ([\d_]+) like mac os x`),
	},
	{
		name:    OSWindows,
		match:   regexp.MustCompile(`(?i)windows`),
		version: regexp.MustCompile(`(?i)windows nt ([\d.]+)`),
	},
	{
		name:    OSMacOS,
		match:   regexp.MustCompile(`(?i)macintosh|mac os x`),
		version: regexp.MustCompile(`(?i)mac os x ([\d_.]+)`),
	},
	{
		name:  OSLinux,
		match: regexp.MustCompile(`(?i)linux|x11`),
	},
}

var mobilePattern = regexp.MustCompile(`(?i)mobi|android|iphone|ipad|ipod|blackberry|iemobile|opera mini|windows phone|webos`)

// windowsNames maps NT kernel versions to the release most people know.
var windowsNames = map[string]string{
	"10.0": "10",
	"6.3":  "8.1",
	"6.2":  "8",
	"6.1":  "7",
	"6.0":  "Vista",
	"5.1":  "XP",
}

// OSRules returns the names of the OS rules in evaluation order.
func OSRules() []string {
	names := make([]string, len(osRules))
	for i, r := range osRules {
		names[i] = r.name
	}
	return names
}

// ParseOS detects the operating system and its version.
// Underscore separated versions (iOS, macOS) are normalized to dots.
func ParseOS(ua string) OS {
	result := OS{Name: OSUnknown, Version: VersionUnknown, Mobile: mobilePattern.MatchString(ua)}
	if ua == "" {
		return result
	}

	for _, rule := range osRules {
		if !rule.match.MatchString(ua) {
			continue
		}
		result.Name = rule.name
		if rule.version != nil {
			if v := extractVersion(ua, rule.version); v != "" {
				result.Version = strings.ReplaceAll(v, "_", ".")
			}
		}
		if rule.name == OSWindows {
			if name, ok := windowsNames[result.Version]; ok {
				result.Version = name
			}
		}
		return result
	}

	return result
}
