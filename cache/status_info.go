package cache

import (
	"slices"
	"time"

	"github.com/nautilusmesh/xdscontrol/ads"
)

// StatusInfo is per-node-group bookkeeping: the last node identity seen for
// the group, when it last sent a request, and the watches currently parked
// waiting for a snapshot update. Every mutation happens under
// SnapshotCache's write lock; StatusInfo has no lock of its own.
type StatusInfo struct {
	node                 *ads.Node
	lastWatchRequestTime time.Time
	watches              map[int64]*Watch
}

func newStatusInfo(node *ads.Node) *StatusInfo {
	return &StatusInfo{
		node:    node,
		watches: make(map[int64]*Watch),
	}
}

// Node returns the identity of the most recent client observed for this
// group.
func (s *StatusInfo) Node() *ads.Node {
	return s.node
}

// LastWatchRequestTime returns the timestamp set by the most recent call to
// SetLastWatchRequestTime.
func (s *StatusInfo) LastWatchRequestTime() time.Time {
	return s.lastWatchRequestTime
}

// NumWatches returns the number of watches currently parked for this group.
func (s *StatusInfo) NumWatches() int {
	return len(s.watches)
}

// SetLastWatchRequestTime records ts as the time of the most recent watch
// request for this group.
func (s *StatusInfo) SetLastWatchRequestTime(ts time.Time) {
	s.lastWatchRequestTime = ts
}

// SetWatch parks watch under id, replacing anything already parked there.
func (s *StatusInfo) SetWatch(id int64, watch *Watch) {
	s.watches[id] = watch
}

// RemoveWatch drops the watch parked under id, if any.
func (s *StatusInfo) RemoveWatch(id int64) {
	delete(s.watches, id)
}

// RemoveIf iterates the parked watches in ascending watch-id order and, for
// each one predicate reports true for, removes it from this StatusInfo.
// predicate is free to emit on the watch before returning true; the
// ascending order gives callers (SnapshotCache.SetSnapshot's fan-out)
// deterministic delivery order for a given group.
func (s *StatusInfo) RemoveIf(predicate func(id int64, watch *Watch) bool) {
	ids := sortedWatchIDs(s.watches)
	for _, id := range ids {
		watch := s.watches[id]
		if predicate(id, watch) {
			delete(s.watches, id)
		}
	}
}

func sortedWatchIDs(watches map[int64]*Watch) []int64 {
	ids := make([]int64, 0, len(watches))
	for id := range watches {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
