package cache

import "google.golang.org/protobuf/proto"

// Snapshot is an immutable, per-group bundle of versioned resources, one
// version and resource set per type URL. A Snapshot never mutates after
// construction; SnapshotCache.SetSnapshot replaces the entry wholesale
// instead of updating one in place.
type Snapshot interface {
	// Version returns the version string for typeURL, or "" if the snapshot
	// has no resources of that type.
	Version(typeURL string) string
	// Resources returns the name-to-resource mapping for typeURL, or nil if
	// the snapshot has no resources of that type. Callers must not mutate
	// the returned map.
	Resources(typeURL string) map[string]proto.Message
}

// typeBundle is one type URL's worth of a Snapshot: a version and the
// resources current as of that version.
type typeBundle struct {
	version   string
	resources map[string]proto.Message
}

// mapSnapshot is the straightforward Snapshot implementation: a fixed map
// from type URL to typeBundle, built once and never modified.
type mapSnapshot struct {
	bundles map[string]typeBundle
}

// NewSnapshot builds a Snapshot from one version and one set of resources
// per type URL. resources maps type URL to a mapping of resource name to
// resource message. A type URL absent from resources is treated by the
// returned Snapshot as if it had version "" and no resources.
//
// Two Snapshots are considered equivalent by SnapshotCache precisely when
// Version returns equal strings for a given type URL; callers are free to
// derive versions from a content hash, a counter, or a timestamp, so long
// as distinct contents never collide.
func NewSnapshot(version string, resources map[string]map[string]proto.Message) Snapshot {
	bundles := make(map[string]typeBundle, len(resources))
	for typeURL, byName := range resources {
		bundles[typeURL] = typeBundle{version: version, resources: byName}
	}
	return &mapSnapshot{bundles: bundles}
}

func (s *mapSnapshot) Version(typeURL string) string {
	return s.bundles[typeURL].version
}

func (s *mapSnapshot) Resources(typeURL string) map[string]proto.Message {
	return s.bundles[typeURL].resources
}

var _ Snapshot = (*mapSnapshot)(nil)
