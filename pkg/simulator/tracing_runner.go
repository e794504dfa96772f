package simulator

import (
	"context"

	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/buildbarn/bb-pagesim/pkg/simulator"

func recordResult(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if kind := util.ErrorKindOf(err); kind != "" {
			span.SetAttributes(attribute.String("error_kind", string(kind)))
		}
	}
}

type tracingRunner struct {
	base   Runner
	tracer trace.Tracer
}

// NewTracingRunner creates a decorator for Runner that creates an
// OpenTelemetry span for every run.
func NewTracingRunner(base Runner, tracerProvider trace.TracerProvider) Runner {
	return &tracingRunner{
		base:   base,
		tracer: tracerProvider.Tracer(tracerName),
	}
}

func (r *tracingRunner) Run(ctx context.Context, sequence reference.Sequence, capacity int, policy eviction.Policy) (*RunResult, error) {
	ctxWithTracing, span := r.tracer.Start(ctx, "Runner.Run", trace.WithAttributes(
		attribute.String("policy", policy.String()),
		attribute.Int("capacity", capacity),
		attribute.Int("references", sequence.Len()),
	))
	defer span.End()

	result, err := r.base.Run(ctxWithTracing, sequence, capacity, policy)
	recordResult(span, err)
	if err == nil {
		span.SetAttributes(
			attribute.Int("faults", result.Faults),
			attribute.Int("hits", result.Hits))
	}
	return result, err
}

type tracingComparer struct {
	base   Comparer
	tracer trace.Tracer
}

// NewTracingComparer creates a decorator for Comparer that creates an
// OpenTelemetry span for every comparison. When combined with
// NewTracingRunner(), the spans of the individual runs become children
// of this span.
func NewTracingComparer(base Comparer, tracerProvider trace.TracerProvider) Comparer {
	return &tracingComparer{
		base:   base,
		tracer: tracerProvider.Tracer(tracerName),
	}
}

func (c *tracingComparer) Compare(ctx context.Context, sequence reference.Sequence, capacity int) (*ComparisonResult, error) {
	ctxWithTracing, span := c.tracer.Start(ctx, "Comparer.Compare", trace.WithAttributes(
		attribute.Int("capacity", capacity),
		attribute.Int("references", sequence.Len()),
	))
	defer span.End()

	result, err := c.base.Compare(ctxWithTracing, sequence, capacity)
	recordResult(span, err)
	if err == nil {
		span.SetAttributes(attribute.String("recommendation", result.Recommendation.String()))
	}
	return result, err
}
