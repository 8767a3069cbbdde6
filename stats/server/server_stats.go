// Package server defines the observability hook a DiscoveryServer embedder
// can use to see request/response traffic without coupling the core to any
// particular metrics backend.
package server

import (
	"context"
	"time"

	"google.golang.org/protobuf/proto"
)

// Handler is invoked with an event of the corresponding type when said
// event occurs.
type Handler interface {
	HandleServerEvent(context.Context, Event)
}

// Event contains information about a specific event that happened in the
// server.
type Event interface {
	isServerEvent()
}

// RequestReceived contains the stats of a request received by the server.
type RequestReceived struct {
	// The received DiscoveryRequest.
	Req proto.Message
	// True if the client requested a type URL not in the resource taxonomy.
	IsRequestedTypeUnknown bool
	// Whether the request is an ACK (carries a non-empty response_nonce and
	// no ErrorDetail).
	IsACK bool
	// Whether the request is a NACK. This is an important stat that
	// requires human attention: it means a client rejected a response.
	IsNACK bool
	// Duration is the time it took to handle the request: validating it and
	// creating or replacing its watch. When the cache answers the request
	// immediately, that response is sent during handling and its send time is
	// included; a response sent later by a snapshot update is not.
	Duration time.Duration
}

func (*RequestReceived) isServerEvent() {}

// ResponseSent contains the stats of a response sent by the server.
type ResponseSent struct {
	// The DiscoveryResponse sent.
	Res proto.Message
	// How long the Send operation took, including time blocked on the
	// per-stream transport lock.
	Duration time.Duration
}

func (*ResponseSent) isServerEvent() {}

// ResourceMarshalError contains the stats for a resource that could not be
// packed into an Any. This should be extremely rare and requires immediate
// attention: it means a resource in a snapshot is not a valid message.
type ResourceMarshalError struct {
	// The type URL of the response being built when the error occurred.
	TypeURL string
	// The resource that could not be marshaled. The stream handler in
	// internal/server does not set this field; it reports only TypeURL and
	// Err.
	Resource proto.Message
	// The marshaling error.
	Err error
}

func (*ResourceMarshalError) isServerEvent() {}
