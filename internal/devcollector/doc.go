// Package devcollector implements a development collection endpoint for
// visitor reports. It logs what it receives, issues session tokens and keeps
// nothing but counters; it is a debugging aid, not storage.
package devcollector
