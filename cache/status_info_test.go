package cache

import (
	"testing"

	"github.com/nautilusmesh/xdscontrol/ads"
	"github.com/stretchr/testify/require"
)

func TestStatusInfoSetRemoveWatch(t *testing.T) {
	info := newStatusInfo(&ads.Node{Id: "node-a"})
	require.Equal(t, 0, info.NumWatches())

	w := NewWatch(&ads.DiscoveryRequest{})
	info.SetWatch(1, w)
	require.Equal(t, 1, info.NumWatches())

	info.RemoveWatch(1)
	require.Equal(t, 0, info.NumWatches())

	// removing twice is a no-op
	info.RemoveWatch(1)
	require.Equal(t, 0, info.NumWatches())
}

func TestStatusInfoRemoveIfOrdersByID(t *testing.T) {
	info := newStatusInfo(&ads.Node{})

	var order []int64
	for _, id := range []int64{5, 1, 3} {
		info.SetWatch(id, NewWatch(&ads.DiscoveryRequest{}))
	}

	info.RemoveIf(func(id int64, _ *Watch) bool {
		order = append(order, id)
		return true
	})

	require.Equal(t, []int64{1, 3, 5}, order)
	require.Equal(t, 0, info.NumWatches())
}

func TestStatusInfoRemoveIfKeepsUnmatched(t *testing.T) {
	info := newStatusInfo(&ads.Node{})
	info.SetWatch(1, NewWatch(&ads.DiscoveryRequest{}))
	info.SetWatch(2, NewWatch(&ads.DiscoveryRequest{}))

	info.RemoveIf(func(id int64, _ *Watch) bool {
		return id == 1
	})

	require.Equal(t, 1, info.NumWatches())
}
