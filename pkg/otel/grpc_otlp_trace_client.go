package otel

import (
	"context"

	"google.golang.org/grpc"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
)

type grpcOTLPTraceClient struct {
	client coltracepb.TraceServiceClient
}

// NewGRPCOTLPTraceClient creates an OTLP trace client that is backed
// by an existing gRPC connection. Unlike otlptracegrpc, the connection
// is owned by the caller, so that it can be created with the same
// options as other gRPC clients of the process.
func NewGRPCOTLPTraceClient(conn grpc.ClientConnInterface) otlptrace.Client {
	return grpcOTLPTraceClient{
		client: coltracepb.NewTraceServiceClient(conn),
	}
}

func (grpcOTLPTraceClient) Start(ctx context.Context) error {
	return nil
}

func (grpcOTLPTraceClient) Stop(ctx context.Context) error {
	return nil
}

func (c grpcOTLPTraceClient) UploadTraces(ctx context.Context, protoSpans []*tracepb.ResourceSpans) error {
	_, err := c.client.Export(ctx, &coltracepb.ExportTraceServiceRequest{
		ResourceSpans: protoSpans,
	})
	return err
}
