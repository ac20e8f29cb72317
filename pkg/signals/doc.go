// Package signals collects the raw visitor signals from a browserenv.Provider.
//
// Collectors are plain functions that never fail: an absent API, an error or
// even a panic inside the provider is replaced by a sentinel (Unknown, 0,
// false or one of the GPU sentinels). Hardware readings and the canvas hash
// go through an identity.Store so they stay stable between visits.
package signals
