package otel_test

import (
	"context"
	"testing"

	bb_otel "github.com/buildbarn/bb-pagesim/pkg/otel"
	"github.com/buildbarn/bb-pagesim/pkg/testutil"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
)

// recordingClientConn captures unary calls made through it.
type recordingClientConn struct {
	method  string
	request proto.Message
	err     error
}

func (c *recordingClientConn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	c.method = method
	c.request = args.(proto.Message)
	return c.err
}

func (c *recordingClientConn) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, status.Error(codes.Unimplemented, "Streaming is not supported")
}

func TestGRPCOTLPTraceClient(t *testing.T) {
	spans := []*tracepb.ResourceSpans{{
		ScopeSpans: []*tracepb.ScopeSpans{{
			Spans: []*tracepb.Span{{Name: "Runner.Run"}},
		}},
	}}

	t.Run("Success", func(t *testing.T) {
		conn := &recordingClientConn{}
		client := bb_otel.NewGRPCOTLPTraceClient(conn)
		require.NoError(t, client.Start(context.Background()))
		require.NoError(t, client.UploadTraces(context.Background(), spans))
		require.NoError(t, client.Stop(context.Background()))

		require.Equal(t, "/opentelemetry.proto.collector.trace.v1.TraceService/Export", conn.method)
		testutil.RequireEqualProto(t, &coltracepb.ExportTraceServiceRequest{ResourceSpans: spans}, conn.request)
	})

	t.Run("Failure", func(t *testing.T) {
		conn := &recordingClientConn{err: status.Error(codes.Unavailable, "Collector is down")}
		err := bb_otel.NewGRPCOTLPTraceClient(conn).UploadTraces(context.Background(), spans)
		testutil.RequireEqualStatus(t, status.Error(codes.Unavailable, "Collector is down"), err)
	})
}
