package useragent

import "strings"

// deviceRule assigns a device type when match accepts the lower-cased user
// agent. Rules are evaluated in order; the first match wins.
type deviceRule struct {
	deviceType string
	match      func(lowerUA string) bool
}

func containsAny(keywords ...string) func(string) bool {
	return func(s string) bool {
		for _, k := range keywords {
			if strings.Contains(s, k) {
				return true
			}
		}
		return false
	}
}

func containsAll(keywords ...string) func(string) bool {
	return func(s string) bool {
		for _, k := range keywords {
			if !strings.Contains(s, k) {
				return false
			}
		}
		return true
	}
}

// Crawlers often mention a desktop OS, so bots are checked before platform
// keywords. Android tablets are the Android agents without "mobile".
var deviceRules = []deviceRule{
	{DeviceTypeTablet, containsAny("ipad")},
	{DeviceTypeMobile, containsAny("iphone")},
	{DeviceTypeBot, containsAny(
		"bot", "spider", "crawler", "archiver", "ping", "lighthouse", "slurp",
		"daum", "sogou", "yeti", "facebook", "twitter", "slack", "linkedin",
		"whatsapp", "telegram", "discord", "camo asset", "generator", "monitor",
		"analyzer", "validator", "fetcher", "scraper", "check",
	)},
	{DeviceTypeMobile, containsAll("android", "mobile")},
	{DeviceTypeTablet, containsAny("android", "tablet", "kindle", "silk")},
	{DeviceTypeMobile, containsAny("mobile", "windows phone", "iemobile", "blackberry", "nokia")},
	{DeviceTypeTV, containsAny("tv", "webos", "tizen")},
	{DeviceTypeConsole, containsAny("playstation", "xbox", "nintendo", "wiiu", "switch")},
	{DeviceTypeTablet, func(s string) bool {
		return strings.Contains(s, "windows") && containsAny("touch", "tablet")(s)
	}},
	{DeviceTypeDesktop, containsAny("windows", "macintosh", "mac os x", "linux", "x11", "ubuntu", "fedora", "debian", "chromeos", "cros")},
}

// ParseDeviceType classifies the device. The input must already be
// lower-cased.
func ParseDeviceType(lowerUA string) string {
	if lowerUA == "" {
		return DeviceTypeUnknown
	}
	for _, r := range deviceRules {
		if r.match(lowerUA) {
			return r.deviceType
		}
	}
	return DeviceTypeUnknown
}
