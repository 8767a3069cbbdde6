package xdscontrol

import (
	"github.com/nautilusmesh/xdscontrol/ads"
	"github.com/nautilusmesh/xdscontrol/cache"
	internal "github.com/nautilusmesh/xdscontrol/internal/server"
	serverstats "github.com/nautilusmesh/xdscontrol/stats/server"
	"google.golang.org/protobuf/proto"
)

// Public aliases to the cache package's exported types, so callers only
// need to import this package for the common case.
type (
	// Snapshot is an immutable, per-group bundle of versioned resources.
	Snapshot = cache.Snapshot
	// Watch is a single-shot subscription created by SnapshotCache.CreateWatch.
	Watch = cache.Watch
	// Response is what a Watch delivers on emission.
	Response = cache.Response
	// StatusInfo is per-node-group bookkeeping maintained by SnapshotCache.
	StatusInfo = cache.StatusInfo
	// SnapshotCache stores one Snapshot per node group; see the cache package.
	SnapshotCache = cache.SnapshotCache
	// NodeHash maps a client's Node identity to the group whose Snapshot it
	// should receive.
	NodeHash = cache.NodeHash
	// IDHash is the default NodeHash: a node's group is its ID field.
	IDHash = cache.IDHash
)

// NewSnapshotCache constructs an empty SnapshotCache. See cache.NewSnapshotCache.
func NewSnapshotCache(ads bool, hash NodeHash) *SnapshotCache {
	return cache.NewSnapshotCache(ads, hash)
}

// NewSnapshot builds a Snapshot from one version and one set of resources
// per type URL. See cache.NewSnapshot.
func NewSnapshot(version string, resources map[string]map[string]proto.Message) Snapshot {
	return cache.NewSnapshot(version, resources)
}

var (
	_ ads.AggregatedServer = (*DiscoveryServer)(nil)
	_ ads.ClusterServer    = (*DiscoveryServer)(nil)
	_ ads.EndpointServer   = (*DiscoveryServer)(nil)
	_ ads.ListenerServer   = (*DiscoveryServer)(nil)
	_ ads.RouteServer      = (*DiscoveryServer)(nil)
)

// DiscoveryServer implements every streaming RPC of the go-control-plane
// discovery service family, backed by one SnapshotCache. All five
// endpoints share the per-stream state machine in internal/server; they
// differ only in which type URL a stream defaults to when a request leaves
// it unset.
type DiscoveryServer struct {
	ads.UnimplementedAggregatedServer
	ads.UnimplementedClusterServer
	ads.UnimplementedEndpointServer
	ads.UnimplementedListenerServer
	ads.UnimplementedRouteServer

	cache        *SnapshotCache
	statsHandler serverstats.Handler
}

// DiscoveryServerOption configures a DiscoveryServer at construction time.
type DiscoveryServerOption interface {
	apply(s *DiscoveryServer)
}

type serverOption func(s *DiscoveryServer)

func (f serverOption) apply(s *DiscoveryServer) { f(s) }

// WithStatsHandler registers a stats handler invoked on every request
// received and response sent across every stream this server manages.
func WithStatsHandler(handler serverstats.Handler) DiscoveryServerOption {
	return serverOption(func(s *DiscoveryServer) {
		s.statsHandler = handler
	})
}

// NewDiscoveryServer returns a DiscoveryServer backed by cache.
func NewDiscoveryServer(cache *SnapshotCache, opts ...DiscoveryServerOption) *DiscoveryServer {
	s := &DiscoveryServer{cache: cache}
	for _, opt := range opts {
		opt.apply(s)
	}
	return s
}

// StreamAggregatedResources implements the ADS RPC: the type URL is
// carried per message, defaulting to nothing (every message on the stream
// must set it, or the stream fails).
func (s *DiscoveryServer) StreamAggregatedResources(stream ads.AggregatedStream) error {
	return internal.StreamHandler(s.cache, s.statsHandler, stream, AnyTypeURL)
}

// StreamClusters implements the CDS RPC.
func (s *DiscoveryServer) StreamClusters(stream ads.ClusterStream) error {
	return internal.StreamHandler(s.cache, s.statsHandler, stream, ads.ClusterTypeURL)
}

// StreamEndpoints implements the EDS RPC.
func (s *DiscoveryServer) StreamEndpoints(stream ads.EndpointStream) error {
	return internal.StreamHandler(s.cache, s.statsHandler, stream, ads.EndpointTypeURL)
}

// StreamListeners implements the LDS RPC.
func (s *DiscoveryServer) StreamListeners(stream ads.ListenerStream) error {
	return internal.StreamHandler(s.cache, s.statsHandler, stream, ads.ListenerTypeURL)
}

// StreamRoutes implements the RDS RPC.
func (s *DiscoveryServer) StreamRoutes(stream ads.RouteStream) error {
	return internal.StreamHandler(s.cache, s.statsHandler, stream, ads.RouteTypeURL)
}
