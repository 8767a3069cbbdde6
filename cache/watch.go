package cache

import (
	"sync"

	"github.com/nautilusmesh/xdscontrol/ads"
	"google.golang.org/protobuf/proto"
)

// Response is what SnapshotCache hands to a Watch when it fires: enough to
// build a DiscoveryResponse, minus the nonce, which only the owning stream
// can assign.
type Response struct {
	TypeURL string
	Version string
	// Resources is ordered: for a request that named resources, it follows
	// the request's order (skipping names absent from the snapshot);
	// otherwise it's the snapshot's full resource set for the type, in no
	// particular order.
	Resources []proto.Message
}

// Watch is a single-shot subscription: a request plus at most one Response.
// SnapshotCache constructs and owns the emission side; the stream that
// requested it owns cancellation and consumes the emission via OnEmit.
//
// A Watch is safe for concurrent use. Emit and Cancel race freely; exactly
// one of them has an effect, and both are safe to call multiple times.
type Watch struct {
	request *ads.DiscoveryRequest

	mu       sync.Mutex
	done     bool
	onEmit   func(*Response)
	onCancel func()
}

// NewWatch creates a Watch for req. It is not live until the cache either
// emits on it or parks it in a StatusInfo.
func NewWatch(request *ads.DiscoveryRequest) *Watch {
	return &Watch{request: request}
}

// Request returns the request that created this Watch.
func (w *Watch) Request() *ads.DiscoveryRequest {
	return w.request
}

// OnEmit registers the callback invoked when the cache emits a Response on
// this watch. If the watch already emitted or was cancelled before OnEmit is
// called, f is dropped: the caller missed the single delivery. Callers that
// need a synchronous emission (e.g. SnapshotCache.CreateWatch's immediate
// path) must install OnEmit before the watch is handed to anything that
// might emit on it, as CreateWatch does.
func (w *Watch) OnEmit(f func(*Response)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return
	}
	w.onEmit = f
}

// OnCancel registers the hook the cache uses to learn that the watch's
// consumer cancelled it, so the cache can drop it from the owning
// StatusInfo. If the watch is already done, the hook fires immediately.
func (w *Watch) OnCancel(f func()) {
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		f()
		return
	}
	w.onCancel = f
	w.mu.Unlock()
}

// Emit delivers r, the single response this watch will ever produce. Calls
// after the first, or after Cancel, are no-ops.
func (w *Watch) Emit(r *Response) {
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		return
	}
	w.done = true
	emit := w.onEmit
	w.mu.Unlock()

	if emit != nil {
		emit(r)
	}
}

// Cancel prevents any future emission and, if a cancel hook is installed,
// invokes it. Idempotent: only the first call has an effect. Safe to call
// after Emit, in which case it does nothing and the hook is not invoked.
func (w *Watch) Cancel() {
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		return
	}
	w.done = true
	cancel := w.onCancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
