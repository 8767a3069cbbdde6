package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nautilusmesh/xdscontrol/ads"
	"github.com/nautilusmesh/xdscontrol/internal/utils"
	"google.golang.org/protobuf/proto"
)

// SnapshotCache stores one Snapshot per node group and turns client requests
// into Watches: a request whose version differs from the current snapshot's
// is answered immediately, while a request that already matches it (or that
// arrives before any snapshot exists) is parked until a SetSnapshot call
// installs a different version.
//
// A SnapshotCache is safe for concurrent use. Every exported method acquires
// the cache's single reader-writer lock; SetSnapshot and CreateWatch take
// the write lock, StatusInfoFor and GroupIDs take the read lock.
type SnapshotCache struct {
	ads  bool
	hash NodeHash

	mu        sync.RWMutex
	snapshots map[string]Snapshot
	statuses  map[string]*StatusInfo
	watchID   int64
}

// NewSnapshotCache constructs an empty SnapshotCache. When ads is true, the
// cache applies the ADS resource-naming rule: a watch whose request names
// resources not yet present in the snapshot is held open rather than
// answered with a partial response. hash decides which Snapshot a given
// client sees; IDHash{} is the usual choice.
func NewSnapshotCache(ads bool, hash NodeHash) *SnapshotCache {
	return &SnapshotCache{
		ads:       ads,
		hash:      hash,
		snapshots: make(map[string]Snapshot),
		statuses:  make(map[string]*StatusInfo),
	}
}

// CreateWatch registers request against the current state of the cache and
// returns the resulting Watch. onEmit is installed on the watch before it
// can possibly fire, including the immediate case where this call responds
// before returning, so the caller's delivery path is wired up regardless of
// which path is taken.
func (c *SnapshotCache) CreateWatch(ctx context.Context, request *ads.DiscoveryRequest, onEmit func(*Response)) *Watch {
	group := c.hash.ID(request.GetNode())

	c.mu.Lock()
	defer c.mu.Unlock()

	info, ok := c.statuses[group]
	if !ok {
		info = newStatusInfo(request.GetNode())
		c.statuses[group] = info
	} else {
		info.node = request.GetNode()
	}
	info.SetLastWatchRequestTime(time.Now())

	watch := NewWatch(request)
	watch.OnEmit(onEmit)
	snapshot := c.snapshots[group]

	if snapshot == nil || request.GetVersionInfo() == snapshot.Version(request.GetTypeUrl()) {
		c.park(info, watch)
		return watch
	}

	if !c.respond(ctx, watch, snapshot, group) {
		// The ADS naming rule blocked the response; park the watch so a
		// later SetSnapshot that covers the missing names can still find it.
		c.park(info, watch)
	}
	return watch
}

// park registers watch in info under a fresh watch ID and wires its cancel
// hook to remove it again. Must be called with the write lock held.
func (c *SnapshotCache) park(info *StatusInfo, watch *Watch) {
	c.watchID++
	id := c.watchID
	info.SetWatch(id, watch)
	watch.OnCancel(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		info.RemoveWatch(id)
	})
}

// SetSnapshot installs snapshot as the current state for group, replacing
// whatever was there before, then answers every parked watch in that
// group's StatusInfo whose requested version now differs from the new
// snapshot. Watches the ADS naming rule still blocks remain parked.
func (c *SnapshotCache) SetSnapshot(ctx context.Context, group string, snapshot Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshots[group] = snapshot

	info, ok := c.statuses[group]
	if !ok {
		return
	}

	info.RemoveIf(func(_ int64, watch *Watch) bool {
		request := watch.Request()
		if snapshot.Version(request.GetTypeUrl()) == request.GetVersionInfo() {
			return false
		}
		return c.respond(ctx, watch, snapshot, group)
	})
}

// StatusInfoFor returns the bookkeeping for group, or nil if the cache has
// never seen a request for it.
func (c *SnapshotCache) StatusInfoFor(group string) *StatusInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statuses[group]
}

// GroupIDs returns every group the cache currently has status information
// for. Supplements the per-group StatusInfoFor for operators that need to
// enumerate live subscriptions.
func (c *SnapshotCache) GroupIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	groups := make([]string, 0, len(c.statuses))
	for group := range c.statuses {
		groups = append(groups, group)
	}
	return groups
}

// ClearSnapshot drops both the snapshot and the status information for
// group, as if it had never been seen. Any watches still parked for the
// group are left untouched by this call; their owning streams will cancel
// them on their own when they next replace or tear down.
func (c *SnapshotCache) ClearSnapshot(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, group)
	delete(c.statuses, group)
}

// respond attempts to emit on watch against snapshot. It reports whether the
// watch was consumed (emitted on, and so should be dropped by the caller);
// a false return means the ADS naming rule blocked the response and the
// watch must remain parked. Must be called with the write lock held.
func (c *SnapshotCache) respond(ctx context.Context, watch *Watch, snapshot Snapshot, group string) bool {
	request := watch.Request()
	typeURL := request.GetTypeUrl()
	resources := snapshot.Resources(typeURL)

	if c.ads && len(request.GetResourceNames()) > 0 {
		missing := utils.NewSet[string]()
		for _, name := range request.GetResourceNames() {
			if _, ok := resources[name]; !ok {
				missing.Add(name)
			}
		}
		if len(missing) > 0 {
			slog.DebugContext(ctx, "ads watch missing named resources, holding open",
				"group", group, "type_url", typeURL, "missing", missing)
			return false
		}
	}

	response := &Response{
		TypeURL: typeURL,
		Version: snapshot.Version(typeURL),
	}
	if names := request.GetResourceNames(); len(names) > 0 {
		response.Resources = make([]proto.Message, 0, len(names))
		for _, name := range names {
			if r, ok := resources[name]; ok {
				response.Resources = append(response.Resources, r)
			}
		}
	} else {
		response.Resources = make([]proto.Message, 0, len(resources))
		for _, r := range resources {
			response.Resources = append(response.Resources, r)
		}
	}

	watch.Emit(response)
	return true
}
