// Package fingerprint composes the visitor fingerprint from a signal bundle.
//
// A fingerprint is nine segments joined by "|", always in this order:
//
//	os | browser | browser major | WxH | {cores}cores-{mem}GB | canvas |
//	device model | pixel ratio (3 decimals) | GPU renderer (max 20 chars)
//
// Changing the order or the delimiter changes every identifier computed
// afterwards, so the layout is tied to Version, which reporters send next to
// the fingerprint.
//
// # Usage
//
//	b := signals.NewCollector(store).Collect(ctx, env)
//	fp := fingerprint.Compose(b)
//	// Android|Chrome|90|360x760|8cores-4GB|1x2y3z-abc|SM-G973F|3.000|Adreno (TM) 640
//
// WithContext and FromContext carry a fingerprint through request handling.
package fingerprint
