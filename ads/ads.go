/*
Package ads provides type aliases around the xDS wire types this control
plane serves: the state-of-the-world discovery request and response
messages, and the per-type streaming RPC interfaces generated from the
envoyproxy/go-control-plane discovery service protos.

These are aliases, not new types, so that values produced by this package
interoperate directly with any code already written against
envoyproxy/go-control-plane.
*/
package ads

import (
	core "github.com/envoyproxy/go-control-plane/envoy/config/core/v3"
	clusterservice "github.com/envoyproxy/go-control-plane/envoy/service/cluster/v3"
	discovery "github.com/envoyproxy/go-control-plane/envoy/service/discovery/v3"
	endpointservice "github.com/envoyproxy/go-control-plane/envoy/service/endpoint/v3"
	listenerservice "github.com/envoyproxy/go-control-plane/envoy/service/listener/v3"
	routeservice "github.com/envoyproxy/go-control-plane/envoy/service/route/v3"
)

// Type aliases to the xDS wire types, for brevity and so every consumer of
// this package doesn't need to import five generated packages directly.
type (
	// Node identifies the data-plane client that opened a stream.
	Node = core.Node

	// DiscoveryRequest is the inbound message shared by all five RPCs.
	DiscoveryRequest = discovery.DiscoveryRequest
	// DiscoveryResponse is the outbound message shared by all five RPCs.
	DiscoveryResponse = discovery.DiscoveryResponse

	// AggregatedServer is the server-side interface for the ADS RPC, whose
	// requests carry their own type_url.
	AggregatedServer = discovery.AggregatedDiscoveryServiceServer
	// ClusterServer is the server-side interface for the CDS RPC.
	ClusterServer = clusterservice.ClusterDiscoveryServiceServer
	// EndpointServer is the server-side interface for the EDS RPC.
	EndpointServer = endpointservice.EndpointDiscoveryServiceServer
	// ListenerServer is the server-side interface for the LDS RPC.
	ListenerServer = listenerservice.ListenerDiscoveryServiceServer
	// RouteServer is the server-side interface for the RDS RPC.
	RouteServer = routeservice.RouteDiscoveryServiceServer

	// AggregatedStream is the bidirectional stream type ADS handlers receive.
	AggregatedStream = discovery.AggregatedDiscoveryService_StreamAggregatedResourcesServer
	// ClusterStream is the bidirectional stream type CDS handlers receive.
	ClusterStream = clusterservice.ClusterDiscoveryService_StreamClustersServer
	// EndpointStream is the bidirectional stream type EDS handlers receive.
	EndpointStream = endpointservice.EndpointDiscoveryService_StreamEndpointsServer
	// ListenerStream is the bidirectional stream type LDS handlers receive.
	ListenerStream = listenerservice.ListenerDiscoveryService_StreamListenersServer
	// RouteStream is the bidirectional stream type RDS handlers receive.
	RouteStream = routeservice.RouteDiscoveryService_StreamRoutesServer

	// UnimplementedAggregatedServer must be embedded by any implementation
	// of AggregatedServer for forward compatibility with new methods.
	UnimplementedAggregatedServer = discovery.UnimplementedAggregatedDiscoveryServiceServer
	// UnimplementedClusterServer must be embedded by any implementation of
	// ClusterServer for forward compatibility with new methods.
	UnimplementedClusterServer = clusterservice.UnimplementedClusterDiscoveryServiceServer
	// UnimplementedEndpointServer must be embedded by any implementation of
	// EndpointServer for forward compatibility with new methods.
	UnimplementedEndpointServer = endpointservice.UnimplementedEndpointDiscoveryServiceServer
	// UnimplementedListenerServer must be embedded by any implementation of
	// ListenerServer for forward compatibility with new methods.
	UnimplementedListenerServer = listenerservice.UnimplementedListenerDiscoveryServiceServer
	// UnimplementedRouteServer must be embedded by any implementation of
	// RouteServer for forward compatibility with new methods.
	UnimplementedRouteServer = routeservice.UnimplementedRouteDiscoveryServiceServer
)
