// Package useragent parses User-Agent strings into the descriptors used by
// the visitor fingerprint: operating system and version, browser identity and
// version, device type and device model.
//
// Detection is table driven. Each detector walks an ordered list of rules and
// the first matching rule wins, so precedence is data that tests can inspect
// (OSRules, BrowserRules) rather than nested conditionals.
//
// # Operating system
//
// ParseOS checks Android, iOS, Windows, MacOS and Linux in that order and
// extracts a version with a per-OS expression. Underscore separated versions
// such as "14_4" become "14.4".
//
// # Browser
//
// All iOS browsers share WebKit, so on iOS the wrapping application token
// (CriOS, FxiOS, EdgiOS, OPiOS) is recorded in Browser.Actual while
// Browser.Name stays "Safari". Off iOS the order is Chrome, Firefox, Edge,
// Safari, Internet Explorer, Opera. RE2 has no lookaheads, so a rule lists
// excluded tokens instead: Chrome excludes "edg/" and "opr/" to keep Edge and
// Opera from being reported as Chrome.
//
// # Device model
//
// ParseDeviceModel tries Samsung, Pixel, Xiaomi and OnePlus expressions on
// Android before a generic semicolon heuristic. iOS yields the device class
// with the OS version; desktops fall back to the navigator platform.
//
// # Usage
//
//	ua, err := useragent.ParseWithPlatform(r.UserAgent(), "MacIntel")
//	if err != nil && !errors.Is(err, useragent.ErrUnknownDevice) {
//	    // malformed or empty input
//	}
//	log.Printf("client=%s", ua.ShortIdentifier())
package useragent
