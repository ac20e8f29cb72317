package useragent

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UserAgent contains the parsed information from a user agent string
type UserAgent struct {
	userAgent   string
	deviceType  string
	deviceModel string
	os          OS
	browser     Browser
}

// String returns the raw user agent string
func (ua UserAgent) String() string { return ua.userAgent }

// DeviceType returns the device type (mobile, desktop, tablet, bot, unknown)
func (ua UserAgent) DeviceType() string { return ua.deviceType }

// DeviceModel returns the device model string
func (ua UserAgent) DeviceModel() string { return ua.deviceModel }

// OS returns the detected operating system
func (ua UserAgent) OS() OS { return ua.os }

// Browser returns the detected browser
func (ua UserAgent) Browser() Browser { return ua.browser }

// IsBot returns true if the user agent is a bot
func (ua UserAgent) IsBot() bool { return ua.deviceType == DeviceTypeBot }

// IsMobile reports the broad mobile flag set by the OS detector.
func (ua UserAgent) IsMobile() bool { return ua.os.Mobile }

// IsDesktop returns true if the user agent is a desktop device
func (ua UserAgent) IsDesktop() bool { return ua.deviceType == DeviceTypeDesktop }

// Bot name extraction keywords - direct mapping for common bots
var botNameMap = map[string]string{
	"googlebot":           "Googlebot",
	"bingbot":             "Bingbot",
	"yandexbot":           "Yandexbot",
	"facebookexternalhit": "Facebook",
	"slackbot":            "Slackbot",
	"adsbot":              "AdsBot",
}

var botNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([a-z0-9\-_]+bot)`),
	regexp.MustCompile(`(?i)([a-z0-9\-_]+spider)`),
	regexp.MustCompile(`(?i)([a-z0-9\-_]+crawler)`),
}

func extractBotName(userAgent string) string {
	lowerUA := strings.ToLower(userAgent)
	for keyword, name := range botNameMap {
		if strings.Contains(lowerUA, keyword) {
			return name
		}
	}

	title := cases.Title(language.English)
	for _, pattern := range botNamePatterns {
		if matches := pattern.FindStringSubmatch(userAgent); len(matches) > 1 {
			return title.String(strings.ToLower(matches[1]))
		}
	}

	return "Unknown Bot"
}

// ShortIdentifier returns a short human-readable label used in log lines.
// Format: Browser/Version (OS Version, device) or "Bot: Name".
func (ua UserAgent) ShortIdentifier() string {
	if ua.IsBot() {
		return fmt.Sprintf("Bot: %s", extractBotName(ua.userAgent))
	}

	if ua.browser.Name == BrowserUnknown && ua.os.Name == OSUnknown {
		return "Unknown device"
	}

	browser := ua.browser.Actual
	if browser == "" {
		browser = ua.browser.Name
	}
	osLabel := ua.os.Name
	if ua.os.Version != "" && ua.os.Version != VersionUnknown {
		osLabel += " " + ua.os.Version
	}

	return fmt.Sprintf("%s/%s (%s, %s)", browser, ua.browser.Version, osLabel, ua.deviceType)
}

// Parse parses a user agent string. Desktop models fall back to "Unknown";
// use ParseWithPlatform when the navigator platform is known.
func Parse(ua string) (UserAgent, error) {
	return ParseWithPlatform(ua, "")
}

// ParseWithPlatform parses a user agent string, using platform as the device
// model for desktops.
func ParseWithPlatform(ua, platform string) (UserAgent, error) {
	if ua == "" {
		return New("", DeviceTypeUnknown, ModelUnknown, ParseOS(""), ParseBrowser("")), ErrEmptyUserAgent
	}

	lowerUA := strings.ToLower(ua)
	deviceType := ParseDeviceType(lowerUA)
	os := ParseOS(ua)
	browser := ParseBrowser(ua)
	model := ParseDeviceModel(ua, os, platform)

	result := New(ua, deviceType, model, os, browser)
	if os.Name == OSUnknown && browser.Name == BrowserUnknown && deviceType == DeviceTypeUnknown {
		return result, ErrMalformedUserAgent
	}
	if deviceType == DeviceTypeUnknown {
		return result, ErrUnknownDevice
	}

	return result, nil
}

// New creates a new UserAgent with the provided parameters
func New(ua, deviceType, deviceModel string, os OS, browser Browser) UserAgent {
	return UserAgent{
		userAgent:   ua,
		deviceType:  deviceType,
		deviceModel: deviceModel,
		os:          os,
		browser:     browser,
	}
}
