package reporter

// EventAddToCart tags reports triggered by an add-to-cart interaction.
const EventAddToCart = "add_to_cart"

// Payload is the JSON document posted to the collection endpoint.
type Payload struct {
	FingerPrint string `json:"fingerPrint"`
	FPVersion   string `json:"fpVersion"`
	Page        string `json:"page"`
	// Token is null until the collector has issued one.
	Token       *string `json:"token"`
	VendorID    string  `json:"vendorId,omitempty"`
	Event       string  `json:"event,omitempty"`
	WebsiteURL  string  `json:"websiteUrl,omitempty"`
	FullPageURL string  `json:"fullPageUrl,omitempty"`
	Referrer    string  `json:"referrer,omitempty"`
}

// response is the part of the collector's answer the reporter cares about.
type response struct {
	Token string `json:"token"`
}
