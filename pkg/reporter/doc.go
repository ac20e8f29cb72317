// Package reporter posts visitor reports to the collection endpoint.
//
// Each report is a single JSON POST; there are no retries. Send waits for the
// outcome, Dispatch runs the delivery on its own goroutine and returns a
// Pending the caller may observe or ignore. A "token" in the response body is
// persisted through the identity store and attached to later reports.
//
//	rep, err := reporter.New(endpoint, store, reporter.WithVendorID("shop-42"))
//	if err != nil {
//		return err
//	}
//	rep.Dispatch(ctx, reporter.Payload{FingerPrint: fp.String(), FPVersion: fingerprint.Version, Page: "home"})
package reporter
