// Package server implements the per-stream request/response state machine
// shared by every xDS streaming RPC: request validation, per-type watch
// and nonce bookkeeping, and serialized transport writes.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nautilusmesh/xdscontrol/ads"
	"github.com/nautilusmesh/xdscontrol/cache"
	"github.com/nautilusmesh/xdscontrol/internal/utils"
	serverstats "github.com/nautilusmesh/xdscontrol/stats/server"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

// Stream is the shape common to the ADS, CDS, EDS, LDS and RDS server
// stream types generated by envoyproxy/go-control-plane: every one of them
// satisfies this interface structurally.
type Stream interface {
	Context() context.Context
	Send(*ads.DiscoveryResponse) error
	Recv() (*ads.DiscoveryRequest, error)
}

// WatchCreator is what a stream needs from a SnapshotCache. It is narrowed
// to a single method so this package doesn't import the root package (which
// imports this one to wire the five RPC endpoints together).
type WatchCreator interface {
	CreateWatch(ctx context.Context, request *ads.DiscoveryRequest, onEmit func(*cache.Response)) *cache.Watch
}

var streamCount int64

// StreamHandler runs one discovery stream to completion. defaultTypeURL is
// "" for the aggregated (ADS) endpoint and the fixed resource type URL for
// each of the four single-typed endpoints; every endpoint shares this same
// state machine, differing only in that one parameter.
func StreamHandler(watchCreator WatchCreator, stats serverstats.Handler, stream Stream, defaultTypeURL string) error {
	h := &streamHandler{
		id:             atomic.AddInt64(&streamCount, 1),
		cache:          watchCreator,
		stats:          stats,
		stream:         stream,
		defaultTypeURL: defaultTypeURL,
		watches:        make(map[string]*cache.Watch),
		nonces:         make(map[string]string),
	}
	return h.run()
}

// streamHandler holds the per-stream state: one live watch and last-sent
// nonce per type URL, plus a stream-wide nonce counter and write lock.
type streamHandler struct {
	id             int64
	cache          WatchCreator
	stats          serverstats.Handler
	stream         Stream
	defaultTypeURL string

	nonceCounter utils.NonceCounter
	sendMu       sync.Mutex // serializes transport writes against request- and snapshot-driven sends

	mu      sync.Mutex // guards watches and nonces
	watches map[string]*cache.Watch
	nonces  map[string]string
}

func (h *streamHandler) run() (err error) {
	ctx := h.stream.Context()
	defer h.cancelAll()

	for {
		req, recvErr := h.stream.Recv()
		if recvErr != nil {
			if errors.Is(recvErr, io.EOF) {
				return nil
			}
			slog.WarnContext(ctx, "stream terminated", "stream_id", h.id, "err", recvErr)
			return recvErr
		}

		if err = h.handleRequest(ctx, req); err != nil {
			slog.WarnContext(ctx, "stream failing on request", "stream_id", h.id, "err", err)
			return err
		}
	}
}

func (h *streamHandler) handleRequest(ctx context.Context, req *ads.DiscoveryRequest) error {
	start := time.Now()
	nonce := req.GetResponseNonce()
	typeURL := req.GetTypeUrl()

	stat := &serverstats.RequestReceived{Req: req}
	if h.stats != nil {
		defer func() {
			stat.Duration = time.Since(start)
			h.stats.HandleServerEvent(ctx, stat)
		}()
	}

	if h.defaultTypeURL == "" && typeURL == "" {
		return grpcstatus.Error(codes.Unknown, "type URL is required for ADS")
	}
	if typeURL == "" {
		typeURL = h.defaultTypeURL
		// The cache keys on the request's own type URL, so hand it a copy
		// with the endpoint's default filled in.
		req = proto.Clone(req).(*ads.DiscoveryRequest)
		req.TypeUrl = typeURL
	}

	if !ads.IsKnownTypeURL(typeURL) {
		slog.WarnContext(ctx, "ignoring unknown type URL", "stream_id", h.id, "type_url", typeURL)
		stat.IsRequestedTypeUnknown = true
		return nil
	}

	switch {
	case req.GetErrorDetail() != nil:
		slog.WarnContext(ctx, "client NACK", "stream_id", h.id, "type_url", typeURL, "detail", req.GetErrorDetail())
		stat.IsNACK = true
	case nonce != "":
		slog.DebugContext(ctx, "client ACK", "stream_id", h.id, "type_url", typeURL, "nonce", nonce)
		stat.IsACK = true
	}

	h.mu.Lock()
	lastNonce := h.nonces[typeURL]
	if lastNonce != "" && lastNonce != nonce {
		h.mu.Unlock()
		slog.DebugContext(ctx, "discarding request with stale nonce",
			"stream_id", h.id, "type_url", typeURL, "got", nonce, "want", lastNonce)
		return nil
	}

	if existing := h.watches[typeURL]; existing != nil {
		existing.Cancel()
	}
	h.mu.Unlock()

	watch := h.cache.CreateWatch(ctx, req, func(resp *cache.Response) {
		if err := h.send(resp); err != nil {
			slog.ErrorContext(ctx, "failed delivering watch response", "stream_id", h.id, "err", err)
		}
	})

	h.mu.Lock()
	h.watches[typeURL] = watch
	h.mu.Unlock()

	return nil
}

// send builds a DiscoveryResponse from resp, assigns it the next nonce in
// this stream's sequence, and writes it to the transport. Writes are
// serialized against both request-driven and snapshot-driven emissions.
func (h *streamHandler) send(resp *cache.Response) error {
	pbResources, err := packResources(resp.Resources)
	if err != nil {
		if h.stats != nil {
			h.stats.HandleServerEvent(h.stream.Context(), &serverstats.ResourceMarshalError{
				TypeURL: resp.TypeURL,
				Err:     err,
			})
		}
		return err
	}

	start := time.Now()
	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	nonce := h.nonceCounter.Next()
	out := &ads.DiscoveryResponse{
		VersionInfo: resp.Version,
		Resources:   pbResources,
		TypeUrl:     resp.TypeURL,
		Nonce:       nonce,
	}

	err = h.stream.Send(out)
	if h.stats != nil {
		h.stats.HandleServerEvent(h.stream.Context(), &serverstats.ResponseSent{
			Res:      out,
			Duration: time.Since(start),
		})
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.nonces[resp.TypeURL] = nonce
	h.mu.Unlock()

	return nil
}

func packResources(resources []proto.Message) ([]*anypb.Any, error) {
	packed := make([]*anypb.Any, 0, len(resources))
	for _, r := range resources {
		any, err := anypb.New(r)
		if err != nil {
			return nil, err
		}
		packed = append(packed, any)
	}
	return packed, nil
}

func (h *streamHandler) cancelAll() {
	h.mu.Lock()
	watches := make([]*cache.Watch, 0, len(h.watches))
	for _, w := range h.watches {
		watches = append(watches, w)
	}
	h.watches = make(map[string]*cache.Watch)
	h.mu.Unlock()

	for _, w := range watches {
		w.Cancel()
	}
}
