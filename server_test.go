package xdscontrol_test

import (
	"context"
	"testing"
	"time"

	clusterv3 "github.com/envoyproxy/go-control-plane/envoy/config/cluster/v3"
	clusterservice "github.com/envoyproxy/go-control-plane/envoy/service/cluster/v3"
	xdscontrol "github.com/nautilusmesh/xdscontrol"
	"github.com/nautilusmesh/xdscontrol/ads"
	"github.com/nautilusmesh/xdscontrol/testutils"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

// TestClusterDiscoveryEndToEnd exercises scenarios 1 and 2 from the
// end-to-end walkthrough over a real gRPC connection: a client that connects
// before any snapshot exists gets nothing until one is published, then
// receives it.
func TestClusterDiscoveryEndToEnd(t *testing.T) {
	snapshots := xdscontrol.NewSnapshotCache(false, xdscontrol.IDHash{})
	server := xdscontrol.NewDiscoveryServer(snapshots)

	ts := testutils.NewTestGRPCServer(t)
	clusterservice.RegisterClusterDiscoveryServiceServer(ts.Server, server)
	ts.Start()

	conn := ts.Dial()
	defer conn.Close()

	ctx := testutils.ContextWithTimeout(t, 5*time.Second)
	stream, err := clusterservice.NewClusterDiscoveryServiceClient(conn).StreamClusters(ctx)
	require.NoError(t, err)

	require.NoError(t, stream.Send(&ads.DiscoveryRequest{
		Node: &ads.Node{Id: "node-a"},
	}))

	cluster := &clusterv3.Cluster{Name: "example-cluster"}
	snapshot := xdscontrol.NewSnapshot("v1", map[string]map[string]proto.Message{
		ads.ClusterTypeURL: {"example-cluster": cluster},
	})

	done := make(chan struct{})
	go func() {
		// Give the server a moment to park the watch before the snapshot
		// lands, so this also exercises the parked path rather than the
		// immediate-response one.
		time.Sleep(50 * time.Millisecond)
		snapshots.SetSnapshot(context.Background(), "node-a", snapshot)
		close(done)
	}()

	resp, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "v1", resp.GetVersionInfo())
	require.Equal(t, "0", resp.GetNonce())
	require.Len(t, resp.GetResources(), 1)

	<-done
}

// TestClusterDiscoveryACKParksWithoutResponse exercises scenario 3: a
// request whose version already matches the snapshot gets no response, but
// still registers a live watch.
func TestClusterDiscoveryACKParksWithoutResponse(t *testing.T) {
	snapshots := xdscontrol.NewSnapshotCache(false, xdscontrol.IDHash{})
	server := xdscontrol.NewDiscoveryServer(snapshots)

	snapshot := xdscontrol.NewSnapshot("v1", map[string]map[string]proto.Message{
		ads.ClusterTypeURL: {"example-cluster": &clusterv3.Cluster{Name: "example-cluster"}},
	})
	snapshots.SetSnapshot(context.Background(), "node-a", snapshot)

	ts := testutils.NewTestGRPCServer(t)
	clusterservice.RegisterClusterDiscoveryServiceServer(ts.Server, server)
	ts.Start()

	conn := ts.Dial()
	defer conn.Close()

	ctx := testutils.ContextWithTimeout(t, 5*time.Second)
	stream, err := clusterservice.NewClusterDiscoveryServiceClient(conn).StreamClusters(ctx)
	require.NoError(t, err)

	require.NoError(t, stream.Send(&ads.DiscoveryRequest{
		Node:        &ads.Node{Id: "node-a"},
		VersionInfo: "v1",
	}))

	require.Eventually(t, func() bool {
		info := snapshots.StatusInfoFor("node-a")
		return info != nil && info.NumWatches() == 1
	}, time.Second, 10*time.Millisecond)
}
