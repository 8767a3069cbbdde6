/*
Package xdscontrol provides the core of an xDS control-plane server: the
state machine that tracks what each connected data-plane proxy has, and the
cache that tracks what it should have.

# SnapshotCache and Watch

[SnapshotCache] stores one [Snapshot] per node group (see [NodeHash]). A
client's request becomes a [Watch], either answered immediately against the
current snapshot or parked until the operator calls
[SnapshotCache.SetSnapshot] with a snapshot whose version differs from what
the client last acknowledged. A Watch fires at most once; see [Watch] for
the full contract.

# DiscoveryServer

[NewDiscoveryServer] returns a type implementing every streaming RPC of the
`envoyproxy/go-control-plane` discovery service family: the aggregated
(ADS) stream and the four single-type streams (CDS, EDS, LDS, RDS). All
five share one state machine, parameterized only by which type URL a given
stream defaults to when a request leaves it unset; see
[internal/server.StreamHandler].

# What this package does not do

It does not define the resource wire format (that's
`envoyproxy/go-control-plane`'s job), does not decide how a node maps to a
group (that's the caller's [NodeHash]), does not validate or assemble
snapshot contents, and carries no authentication, rate limiting, or
persistence.
*/
package xdscontrol
