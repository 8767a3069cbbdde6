package cache

import (
	"context"
	"testing"

	"github.com/nautilusmesh/xdscontrol/ads"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const clusterType = "type.googleapis.com/envoy.config.cluster.v3.Cluster"

func req(node, typeURL, version string, names ...string) *ads.DiscoveryRequest {
	return &ads.DiscoveryRequest{
		Node:          &ads.Node{Id: node},
		TypeUrl:       typeURL,
		VersionInfo:   version,
		ResourceNames: names,
	}
}

// TestColdStart covers a client connecting before any snapshot exists:
// the watch parks without emitting.
func TestColdStart(t *testing.T) {
	c := NewSnapshotCache(false, IDHash{})

	var got *Response
	w := c.CreateWatch(context.Background(), req("node-a", clusterType, ""), func(r *Response) {
		got = r
	})

	require.Nil(t, got)
	info := c.StatusInfoFor("node-a")
	require.NotNil(t, info)
	require.Equal(t, 1, info.NumWatches())
	_ = w
}

// TestSnapshotArrives covers setting a snapshot answering a parked watch
// with the new version and resources.
func TestSnapshotArrives(t *testing.T) {
	c := NewSnapshotCache(false, IDHash{})

	var got *Response
	c.CreateWatch(context.Background(), req("node-a", clusterType, ""), func(r *Response) {
		got = r
	})

	a := wrapperspb.String("A")
	b := wrapperspb.String("B")
	snap := NewSnapshot("v1", map[string]map[string]proto.Message{
		clusterType: {"A": a, "B": b},
	})
	c.SetSnapshot(context.Background(), "node-a", snap)

	require.NotNil(t, got)
	require.Equal(t, "v1", got.Version)
	require.Len(t, got.Resources, 2)

	info := c.StatusInfoFor("node-a")
	require.Equal(t, 0, info.NumWatches())
}

// TestACKParksNewWatchWithoutResponse covers a request whose version
// already matches the snapshot: it parks a fresh watch and gets no response.
func TestACKParksNewWatchWithoutResponse(t *testing.T) {
	c := NewSnapshotCache(false, IDHash{})

	snap := NewSnapshot("v1", map[string]map[string]proto.Message{
		clusterType: {"A": wrapperspb.String("A")},
	})
	c.SetSnapshot(context.Background(), "node-a", snap)

	var called bool
	c.CreateWatch(context.Background(), req("node-a", clusterType, "v1"), func(*Response) {
		called = true
	})

	require.False(t, called)
	require.Equal(t, 1, c.StatusInfoFor("node-a").NumWatches())
}

// TestADSGating covers a watch naming resources absent from the snapshot:
// it stays parked until a later snapshot names them all.
func TestADSGating(t *testing.T) {
	c := NewSnapshotCache(true, IDHash{})

	v2 := NewSnapshot("v2", map[string]map[string]proto.Message{
		"type.endpoint": {"A": wrapperspb.String("A"), "B": wrapperspb.String("B")},
	})
	c.SetSnapshot(context.Background(), "node-a", v2)

	var got *Response
	c.CreateWatch(context.Background(), req("node-a", "type.endpoint", "", "A", "B", "C"), func(r *Response) {
		got = r
	})
	require.Nil(t, got, "watch should stay parked while C is missing")
	require.Equal(t, 1, c.StatusInfoFor("node-a").NumWatches())

	v3 := NewSnapshot("v3", map[string]map[string]proto.Message{
		"type.endpoint": {
			"A": wrapperspb.String("A"),
			"B": wrapperspb.String("B"),
			"C": wrapperspb.String("C"),
		},
	})
	c.SetSnapshot(context.Background(), "node-a", v3)

	require.NotNil(t, got)
	require.Equal(t, "v3", got.Version)
	require.Len(t, got.Resources, 3)
	require.Equal(t, 0, c.StatusInfoFor("node-a").NumWatches())
}

func TestSetSnapshotIgnoresUnknownGroup(t *testing.T) {
	c := NewSnapshotCache(false, IDHash{})
	// no status info exists for "node-a" yet; must not panic
	c.SetSnapshot(context.Background(), "node-a", NewSnapshot("v1", nil))
	require.Nil(t, c.StatusInfoFor("node-a"))
}

func TestGroupIDsAndClearSnapshot(t *testing.T) {
	c := NewSnapshotCache(false, IDHash{})
	c.CreateWatch(context.Background(), req("node-a", clusterType, ""), func(*Response) {})
	c.CreateWatch(context.Background(), req("node-b", clusterType, ""), func(*Response) {})

	require.ElementsMatch(t, []string{"node-a", "node-b"}, c.GroupIDs())

	c.ClearSnapshot("node-a")
	require.ElementsMatch(t, []string{"node-b"}, c.GroupIDs())
	require.Nil(t, c.StatusInfoFor("node-a"))
}

func TestNoResourceNamesReturnsFullSnapshot(t *testing.T) {
	c := NewSnapshotCache(false, IDHash{})
	snap := NewSnapshot("v1", map[string]map[string]proto.Message{
		clusterType: {"A": wrapperspb.String("A"), "B": wrapperspb.String("B")},
	})
	c.SetSnapshot(context.Background(), "node-a", snap)

	var got *Response
	c.CreateWatch(context.Background(), req("node-a", clusterType, ""), func(r *Response) {
		got = r
	})

	require.NotNil(t, got)
	require.Len(t, got.Resources, 2)
}
