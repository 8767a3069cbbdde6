package ads

import (
	resourcev3 "github.com/envoyproxy/go-control-plane/pkg/resource/v3"
)

// AnyTypeURL is the type URL reserved to mean "any"/"unset". It serves only
// as the default type URL of the ADS endpoint, meaning that endpoint has no
// default: an ADS request that leaves type_url empty fails the stream.
const AnyTypeURL = resourcev3.AnyType

// The fixed taxonomy of resource type URLs this control plane serves.
const (
	ClusterTypeURL  = resourcev3.ClusterType
	EndpointTypeURL = resourcev3.EndpointType
	ListenerTypeURL = resourcev3.ListenerType
	RouteTypeURL    = resourcev3.RouteType
)

// typeURLs is the fixed, ordered set of resource type URLs this control
// plane understands. Order matters only for deterministic iteration (e.g.
// in tests); it carries no protocol meaning.
var typeURLs = []string{
	resourcev3.ClusterType,
	resourcev3.EndpointType,
	resourcev3.ListenerType,
	resourcev3.RouteType,
}

// IsKnownTypeURL reports whether typeURL is one of the resource types this
// control plane serves. The empty string (AnyTypeURL) is never a known
// type: it is a stream bootstrapping sentinel, not a resource kind.
func IsKnownTypeURL(typeURL string) bool {
	for _, t := range typeURLs {
		if t == typeURL {
			return true
		}
	}
	return false
}

// KnownTypeURLs returns the fixed taxonomy of resource type URLs, in a
// stable order. Callers must not mutate the returned slice.
func KnownTypeURLs() []string {
	return typeURLs
}
