package useragent_test

import (
	"strings"
	"testing"

	"github.com/dmitrymomot/visitorid/pkg/useragent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uaAndroidSamsung = "Mozilla/5.0 (Linux; Android 10; SM-G973F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.210 Mobile Safari/537.36"
	uaAndroidPixel   = "Mozilla/5.0 (Linux; Android 11; Pixel 5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Mobile Safari/537.36"
	uaAndroidRedmi   = "Mozilla/5.0 (Linux; Android 10; Redmi Note 8 Pro Build/QP1A.190711.020) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/88.0.4324.181 Mobile Safari/537.36"
	uaAndroidOnePlus = "Mozilla/5.0 (Linux; Android 9; ONEPLUS A6013) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.99 Mobile Safari/537.36"
	uaAndroidGeneric = "Mozilla/5.0 (Linux; Android 12; moto g(60) Build/S2RIS32.32-20-1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.88 Mobile Safari/537.36"
	uaAndroidReduced = "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaSamsungBrowser = "Mozilla/5.0 (Linux; Android 11; SM-A515F) AppleWebKit/537.36 (KHTML, like Gecko) SamsungBrowser/14.0 Chrome/87.0.4280.141 Mobile Safari/537.36"
	uaIPhoneSafari   = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1"
	uaIPhoneChrome   = "Mozilla/5.0 (iPhone; CPU iPhone OS 15_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/96.0.4664.101 Mobile/15E148 Safari/604.1"
	uaIPadFirefox    = "Mozilla/5.0 (iPad; CPU OS 14_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) FxiOS/34.0 Mobile/15E148 Safari/605.1.15"
	uaIPhoneEdge     = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 EdgiOS/107.1418.52 Mobile/15E148 Safari/605.1.15"
	uaIPodOpera      = "Mozilla/5.0 (iPod touch; CPU iPhone OS 12_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) OPiOS/16.0.14.122053 Mobile/15E148 Safari/9537.53"
	uaWindowsChrome  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	uaWindowsEdge    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36 Edg/91.0.864.59"
	uaWindowsOpera   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36 OPR/77.0.4054.254"
	uaWindowsIE11    = "Mozilla/5.0 (Windows NT 6.1; WOW64; Trident/7.0; rv:11.0) like Gecko"
	uaWindowsFirefox = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0"
	uaMacSafari      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15"
	uaLinuxFirefox   = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:89.0) Gecko/20100101 Firefox/89.0"
	uaGooglebot      = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestParseOS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ua       string
		expected useragent.OS
	}{
		{"Android Samsung", uaAndroidSamsung, useragent.OS{Name: useragent.OSAndroid, Version: "10", Mobile: true}},
		{"Android Pixel", uaAndroidPixel, useragent.OS{Name: useragent.OSAndroid, Version: "11", Mobile: true}},
		{"iPhone", uaIPhoneSafari, useragent.OS{Name: useragent.OSiOS, Version: "14.4", Mobile: true}},
		{"iPad", uaIPadFirefox, useragent.OS{Name: useragent.OSiOS, Version: "14.6", Mobile: true}},
		{"Windows 10", uaWindowsChrome, useragent.OS{Name: useragent.OSWindows, Version: "10", Mobile: false}},
		{"Windows 7", uaWindowsIE11, useragent.OS{Name: useragent.OSWindows, Version: "7", Mobile: false}},
		{"macOS", uaMacSafari, useragent.OS{Name: useragent.OSMacOS, Version: "10.15.7", Mobile: false}},
		{"Linux", uaLinuxFirefox, useragent.OS{Name: useragent.OSLinux, Version: useragent.VersionUnknown, Mobile: false}},
		{"Empty", "", useragent.OS{Name: useragent.OSUnknown, Version: useragent.VersionUnknown}},
		{"Garbage", "definitely not a browser", useragent.OS{Name: useragent.OSUnknown, Version: useragent.VersionUnknown}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, useragent.ParseOS(tc.ua))
		})
	}
}

func TestOSRulesOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{useragent.OSAndroid, useragent.OSiOS, useragent.OSWindows, useragent.OSMacOS, useragent.OSLinux},
		useragent.OSRules(),
	)
}

func TestParseBrowser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ua       string
		expected useragent.Browser
	}{
		{"Chrome on Android", uaAndroidSamsung, useragent.Browser{Name: "Chrome", Version: "90.0", Actual: "Chrome"}},
		{"Chrome on Windows", uaWindowsChrome, useragent.Browser{Name: "Chrome", Version: "91.0", Actual: "Chrome"}},
		{"Edge is not Chrome", uaWindowsEdge, useragent.Browser{Name: "Edge", Version: "91.0", Actual: "Edge"}},
		{"Opera is not Chrome", uaWindowsOpera, useragent.Browser{Name: "Opera", Version: "77.0", Actual: "Opera"}},
		{"Firefox", uaWindowsFirefox, useragent.Browser{Name: "Firefox", Version: "89.0", Actual: "Firefox"}},
		{"Safari on macOS", uaMacSafari, useragent.Browser{Name: "Safari", Version: "14.1", Actual: "Safari"}},
		{"IE 11", uaWindowsIE11, useragent.Browser{Name: "Internet Explorer", Version: "11.0", Actual: "Internet Explorer"}},
		{"Samsung Internet", uaSamsungBrowser, useragent.Browser{Name: "Samsung Internet", Version: "14.0", Actual: "Samsung Internet"}},
		{"Safari on iPhone", uaIPhoneSafari, useragent.Browser{Name: "Safari", Version: "14.0", Actual: "Safari"}},
		{"Chrome on iPhone", uaIPhoneChrome, useragent.Browser{Name: "Safari", Version: "96.0", Actual: "Chrome"}},
		{"Firefox on iPad", uaIPadFirefox, useragent.Browser{Name: "Safari", Version: "34.0", Actual: "Firefox"}},
		{"Edge on iPhone", uaIPhoneEdge, useragent.Browser{Name: "Safari", Version: "107.1418", Actual: "Edge"}},
		{"Opera on iPod", uaIPodOpera, useragent.Browser{Name: "Safari", Version: "16.0", Actual: "Opera"}},
		{"Empty", "", useragent.Browser{Name: "Unknown", Version: "Unknown", Actual: "Unknown"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, useragent.ParseBrowser(tc.ua))
		})
	}
}

func TestBrowserRulesOrder(t *testing.T) {
	t.Parallel()

	rules := useragent.BrowserRules()
	require.GreaterOrEqual(t, len(rules), 6)
	assert.Equal(t,
		[]string{"Chrome", "Firefox", "Edge", "Safari", "Internet Explorer", "Opera"},
		rules[:6],
	)
}

func TestBrowserMajor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "90", useragent.Browser{Version: "90.0"}.Major())
	assert.Equal(t, "14", useragent.Browser{Version: "14"}.Major())
	assert.Equal(t, useragent.VersionUnknown, useragent.Browser{Version: useragent.VersionUnknown}.Major())
	assert.Equal(t, useragent.VersionUnknown, useragent.Browser{}.Major())
}

func TestParseDeviceModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ua       string
		platform string
		expected string
	}{
		{"Samsung", uaAndroidSamsung, "Linux armv8l", "SM-G973F"},
		{"Pixel", uaAndroidPixel, "", "Pixel 5"},
		{"Redmi", uaAndroidRedmi, "", "Redmi Note 8 Pro"},
		{"OnePlus", uaAndroidOnePlus, "", "ONEPLUS A6013"},
		{"Generic Build tag", uaAndroidGeneric, "", "moto g(60)"},
		{"Reduced UA", uaAndroidReduced, "", "K"},
		{"Old locale UA", "Mozilla/5.0 (Linux; U; Android 4.0.3; ko-kr; LG-L160L Build/IML74K) AppleWebkit/534.30 (KHTML, like Gecko) Version/4.0 Mobile Safari/534.30", "", "LG-L160L"},
		{"iPhone", uaIPhoneSafari, "iPhone", "iPhone (iOS 14.4)"},
		{"iPad", uaIPadFirefox, "iPad", "iPad (iOS 14.6)"},
		{"iPod", uaIPodOpera, "iPod", "iPod (iOS 12.5)"},
		{"Desktop uses platform", uaWindowsChrome, "Win32", "Win32"},
		{"Desktop without platform", uaMacSafari, "", useragent.PlatformUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			os := useragent.ParseOS(tc.ua)
			assert.Equal(t, tc.expected, useragent.ParseDeviceModel(tc.ua, os, tc.platform))
		})
	}
}

func TestParseDeviceType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ua       string
		expected string
	}{
		{"iPhone", uaIPhoneSafari, useragent.DeviceTypeMobile},
		{"iPad", uaIPadFirefox, useragent.DeviceTypeTablet},
		{"Android phone", uaAndroidPixel, useragent.DeviceTypeMobile},
		{"Windows", uaWindowsChrome, useragent.DeviceTypeDesktop},
		{"Googlebot", uaGooglebot, useragent.DeviceTypeBot},
		{"Empty", "", useragent.DeviceTypeUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, useragent.ParseDeviceType(strings.ToLower(tc.ua)))
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("android end to end", func(t *testing.T) {
		ua, err := useragent.ParseWithPlatform(uaAndroidSamsung, "Linux armv8l")
		require.NoError(t, err)
		assert.Equal(t, "Android", ua.OS().Name)
		assert.Equal(t, "10", ua.OS().Version)
		assert.Equal(t, "SM-G973F", ua.DeviceModel())
		assert.Equal(t, "Chrome", ua.Browser().Name)
		assert.True(t, ua.IsMobile())
		assert.Equal(t, uaAndroidSamsung, ua.String())
	})

	t.Run("desktop uses platform", func(t *testing.T) {
		ua, err := useragent.ParseWithPlatform(uaWindowsChrome, "Win32")
		require.NoError(t, err)
		assert.True(t, ua.IsDesktop())
		assert.Equal(t, "Win32", ua.DeviceModel())
		assert.Equal(t, "Chrome/91.0 (Windows 10, desktop)", ua.ShortIdentifier())
	})

	t.Run("empty", func(t *testing.T) {
		ua, err := useragent.Parse("")
		require.ErrorIs(t, err, useragent.ErrEmptyUserAgent)
		assert.Equal(t, useragent.OSUnknown, ua.OS().Name)
		assert.Equal(t, "Unknown device", ua.ShortIdentifier())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := useragent.Parse("definitely not a browser")
		require.ErrorIs(t, err, useragent.ErrMalformedUserAgent)
	})

	t.Run("bot", func(t *testing.T) {
		ua, err := useragent.Parse(uaGooglebot)
		require.NoError(t, err)
		assert.True(t, ua.IsBot())
		assert.Equal(t, "Bot: Googlebot", ua.ShortIdentifier())
	})
}
