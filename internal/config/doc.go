// Package config loads the visitorid runtime configuration from the
// environment and optional .env files, and opens the identity store it
// selects.
package config
