package useragent

import (
	"regexp"
	"strings"
)

type modelRule struct {
	vendor string
	regex  *regexp.Regexp
}

// androidModelRules are tried in order before the generic heuristic.
var androidModelRules = []modelRule{
	{vendor: "samsung", regex: regexp.MustCompile(`\b(SM-[A-Z0-9]+)\b`)},
	{vendor: "pixel", regex: regexp.MustCompile(`\b(Pixel[^;)]*?)\s*(?:Build/|[;)])`)},
	{vendor: "xiaomi", regex: regexp.MustCompile(`\b((?:Redmi|POCO|Xiaomi|Mi)\b[^;)]*?)\s*(?:Build/|[;)])`)},
	{vendor: "oneplus", regex: regexp.MustCompile(`(?i)\b(ONEPLUS\s?[A-Z0-9]+)\b`)},
}

var iosDevicePattern = regexp.MustCompile(`iPhone|iPad|iPod`)

// ParseDeviceModel extracts a device model string.
//
// Android: vendor specific patterns first, then the text between the second
// semicolon and the Build tag. iOS: device class plus OS version, for example
// "iPhone (iOS 14.4)". Anything else falls back to the platform string.
func ParseDeviceModel(ua string, os OS, platform string) string {
	switch os.Name {
	case OSAndroid:
		if model := androidModel(ua); model != "" {
			return model
		}
		return ModelUnknown
	case OSiOS:
		class := iosDevicePattern.FindString(ua)
		if class == "" {
			class = DeviceIPhone
		}
		return class + " (iOS " + os.Version + ")"
	}

	if platform = strings.TrimSpace(platform); platform != "" {
		return platform
	}
	return PlatformUnknown
}

func androidModel(ua string) string {
	for _, rule := range androidModelRules {
		if m := rule.regex.FindStringSubmatch(ua); len(m) > 1 {
			if model := strings.TrimSpace(m[1]); model != "" {
				return model
			}
		}
	}
	return genericAndroidModel(ua)
}

// genericAndroidModel takes the segment after the second semicolon of the
// platform section, e.g. "(Linux; Android 10; K)" yields "K". Older UAs put
// a locale there, so when a Build tag is present the segment right before it
// wins.
func genericAndroidModel(ua string) string {
	open := strings.IndexByte(ua, '(')
	if open < 0 {
		return ""
	}
	section := ua[open+1:]

	var model string
	if idx := strings.Index(strings.ToLower(section), "build/"); idx >= 0 {
		parts := strings.Split(section[:idx], ";")
		if len(parts) < 3 {
			return ""
		}
		model = parts[len(parts)-1]
	} else {
		if end := strings.IndexByte(section, ')'); end >= 0 {
			section = section[:end]
		}
		parts := strings.Split(section, ";")
		if len(parts) < 3 {
			return ""
		}
		model = parts[2]
	}

	model = strings.TrimSpace(model)
	if strings.EqualFold(model, "wv") || strings.HasPrefix(strings.ToLower(model), "android") {
		return ""
	}
	return model
}
