// Package testutils provides shared scaffolding for exercising
// DiscoveryServer and SnapshotCache end-to-end over a real gRPC transport.
package testutils

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
)

// WithTimeout runs f as a subtest named name, failing it if it doesn't
// complete within timeout.
func WithTimeout(t *testing.T, name string, timeout time.Duration, f func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		t.Helper()
		done := make(chan struct{})
		go func() {
			f(t)
			close(done)
		}()
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-timer.C:
			t.Fatalf("%q failed to complete in %s", t.Name(), timeout)
		case <-done:
			return
		}
	})
}

// Context returns a context cancelled when tb finishes.
func Context(tb testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)
	return ctx
}

// ContextWithTimeout returns a context cancelled after timeout or when tb
// finishes, whichever comes first.
func ContextWithTimeout(tb testing.TB, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	tb.Cleanup(cancel)
	return ctx
}

// testingT is the bare minimum required by the testify framework. *testing.T
// implements it, but this interface lets the test framework itself be
// tested.
type testingT interface {
	Logf(format string, args ...any)
	Errorf(format string, args ...any)
	FailNow()
	Helper()
	Fatalf(string, ...any)
}

var _ testingT = (*testing.T)(nil)
var _ testingT = (*testing.B)(nil)

// ProtoEquals fails the test if expected and actual aren't proto.Equal,
// printing a text-format diff.
func ProtoEquals(t testingT, expected, actual proto.Message) {
	t.Helper()
	if !proto.Equal(expected, actual) {
		t.Fatalf(
			"Messages not equal:\nexpected:%s\nactual  :%s\n%s",
			expected, actual,
			cmp.Diff(prototext.Format(expected), prototext.Format(actual)),
		)
	}
}

// TestServer is instantiated with NewTestGRPCServer and facilitates local
// testing against gRPC service implementations.
type TestServer struct {
	t *testing.T
	*grpc.Server
	net.Listener
}

// Start starts the backing gRPC server in a goroutine. Must be invoked
// _after_ registering services.
func (ts *TestServer) Start() {
	go func() {
		err := ts.Server.Serve(ts.Listener)
		if err != nil && err != grpc.ErrServerStopped {
			require.NoError(ts.t, err)
		}
	}()
}

// Dial invokes grpc.NewClient with the given options and the server's
// address, defaulting to insecure transport credentials.
func (ts *TestServer) Dial(opts ...grpc.DialOption) *grpc.ClientConn {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(ts.AddrString(), opts...)
	require.NoError(ts.t, err)
	return conn
}

// AddrString returns the address the server is listening on.
func (ts *TestServer) AddrString() string {
	return ts.Addr().String()
}

// NewTestGRPCServer spins up a TCP listener on a random local port along
// with a grpc.Server, cleaned up via t.Cleanup. Sample usage:
//
//	ts := testutils.NewTestGRPCServer(t)
//	discovery.RegisterAggregatedDiscoveryServiceServer(ts.Server, s)
//	ts.Start()
//	conn := ts.Dial()
func NewTestGRPCServer(t *testing.T, opts ...grpc.ServerOption) *TestServer {
	ts := &TestServer{
		t:      t,
		Server: grpc.NewServer(opts...),
	}

	var err error
	ts.Listener, err = net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	t.Cleanup(func() {
		ts.Server.Stop()
	})

	return ts
}
