package useragent

// Device types represent the category of device that made the request
const (
	// DeviceTypeBot identifies automated crawlers, bots, and spiders
	DeviceTypeBot = "bot"

	// DeviceTypeMobile identifies smartphones and feature phones
	DeviceTypeMobile = "mobile"

	// DeviceTypeTablet identifies tablet devices (iPad, Android tablets, etc.)
	DeviceTypeTablet = "tablet"

	// DeviceTypeDesktop identifies desktop computers and laptops
	DeviceTypeDesktop = "desktop"

	// DeviceTypeTV identifies smart TVs and streaming devices
	DeviceTypeTV = "tv"

	// DeviceTypeConsole identifies gaming consoles
	DeviceTypeConsole = "console"

	// DeviceTypeUnknown is used when the device type cannot be determined
	DeviceTypeUnknown = "unknown"
)

// Operating system names as they appear in fingerprints.
const (
	OSAndroid = "Android"
	OSiOS     = "iOS"
	OSWindows = "Windows"
	OSMacOS   = "MacOS"
	OSLinux   = "Linux"
	OSUnknown = "Unknown"
)

// Browser names as they appear in fingerprints.
const (
	BrowserChrome   = "Chrome"
	BrowserFirefox  = "Firefox"
	BrowserEdge     = "Edge"
	BrowserSafari   = "Safari"
	BrowserIE       = "Internet Explorer"
	BrowserOpera    = "Opera"
	BrowserSamsung  = "Samsung Internet"
	BrowserYandex   = "Yandex"
	BrowserVivaldi  = "Vivaldi"
	BrowserUnknown  = "Unknown"
	VersionUnknown  = "Unknown"
	ModelUnknown    = "Unknown"
	PlatformUnknown = "Unknown"
)

// iOS device classes returned by ParseDeviceModel.
const (
	DeviceIPhone = "iPhone"
	DeviceIPad   = "iPad"
	DeviceIPod   = "iPod"
)
