package xdscontrol

import "github.com/nautilusmesh/xdscontrol/ads"

// AnyTypeURL is the type URL reserved to mean "any"/"unset": the default
// type URL of the ADS endpoint, where every request must set its own.
const AnyTypeURL = ads.AnyTypeURL

// IsKnownTypeURL reports whether typeURL is one of the resource types this
// control plane serves (Cluster, Endpoint, Listener, Route).
func IsKnownTypeURL(typeURL string) bool {
	return ads.IsKnownTypeURL(typeURL)
}

// KnownTypeURLs returns the fixed taxonomy of resource type URLs this
// control plane serves, in a stable order. Callers must not mutate the
// returned slice.
func KnownTypeURLs() []string {
	return ads.KnownTypeURLs()
}
