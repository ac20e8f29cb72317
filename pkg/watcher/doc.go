// Package watcher turns clicks on add-to-cart controls into callbacks.
package watcher
