// Package provider holds the adapters that fetch one slice of location
// data each. Adapters check their own cache first, apply a per-call
// timeout, and report failure as nil so the analyzer can settle all
// sources and keep whatever landed.
package provider

import "time"

const (
	fetchTimeout = 8 * time.Second
	geoTimeout   = 5 * time.Second
)
