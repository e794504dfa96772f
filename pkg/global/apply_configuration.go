package global

import (
	"context"
	"io"
	"log"
	"net/http"

	// The pprof package does not provide a function for registering
	// its endpoints against an arbitrary mux. Load it to force
	// registration against the default mux, so we can forward
	// traffic to that mux instead.
	_ "net/http/pprof"
	"os"
	"regexp"
	"runtime"
	"sort"
	"sync/atomic"

	"github.com/buildbarn/bb-pagesim/pkg/clock"
	bb_http "github.com/buildbarn/bb-pagesim/pkg/http"
	bb_otel "github.com/buildbarn/bb-pagesim/pkg/otel"
	bb_prometheus "github.com/buildbarn/bb-pagesim/pkg/prometheus"
	"github.com/buildbarn/bb-pagesim/pkg/util"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	stateNotServing int32 = iota
	stateServing
)

// DiagnosticsServer is returned by ApplyConfiguration. It can be used by
// the caller to report whether the application has started up
// successfully.
type DiagnosticsServer struct {
	config *DiagnosticsHTTPServerConfiguration
	state  atomic.Int32
	server *http.Server
}

// NewRouter returns the routes served by the diagnostics web server.
func (ds *DiagnosticsServer) NewRouter() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/-/healthy", func(http.ResponseWriter, *http.Request) {})
	router.HandleFunc("/-/ready", func(w http.ResponseWriter, _ *http.Request) {
		if ds.state.Load() == stateServing {
			w.WriteHeader(http.StatusOK)
		} else {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
	if ds.config.EnablePrometheus {
		router.Handle("/metrics", promhttp.Handler())
	}
	if ds.config.EnablePprof {
		router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	}
	return router
}

// Serve can be called to report that the program has started successfully.
// The application should now be reported as being healthy and ready, according
// to isReady, and receive incoming requests if applicable.
func (ds *DiagnosticsServer) Serve(terminationContext context.Context) error {
	// Start a diagnostics web server that exposes Prometheus
	// metrics and provides a health check endpoint.
	if ds.config != nil {
		ds.server = &http.Server{
			Addr:    ds.config.ListenAddress,
			Handler: ds.NewRouter(),
		}
		go func() {
			<-terminationContext.Done()
			ds.SetNotServing()
			ds.server.Shutdown(context.Background())
		}()
		if err := ds.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
	} else {
		<-terminationContext.Done()
	}
	return nil
}

// SetReady updates the health check to report healthy and ready.
func (ds *DiagnosticsServer) SetReady() {
	ds.state.Store(stateServing)
}

// SetNotServing updates the health check to report healthy but not ready.
func (ds *DiagnosticsServer) SetNotServing() {
	ds.state.Store(stateNotServing)
}

// ServeDiagnostics is a wrapper that calls DiagnosticsServer.Serve inside
// a goroutine, managed by the provided errgroup.Group, and returns
// immediately.
func ServeDiagnostics(terminationContext context.Context, terminationGroup *errgroup.Group, diagnosticsServer *DiagnosticsServer) {
	terminationGroup.Go(func() error {
		if err := diagnosticsServer.Serve(terminationContext); err != nil {
			return util.StatusWrap(err, "Diagnostics server")
		}
		return nil
	})
}

// ApplyConfiguration applies configuration options to the running
// process. These configuration options are global, in that they apply
// to all binaries, regardless of their purpose.
//
// The returned TracerProvider should be used to create spans. It is
// also installed as the global TracerProvider, so that libraries such
// as otelhttp use it as well.
func ApplyConfiguration(configuration *Configuration) (*DiagnosticsServer, trace.TracerProvider, error) {
	if configuration == nil {
		configuration = &Configuration{}
	}

	// Set the umask, if requested.
	if umask := configuration.SetUmask; umask != nil {
		if err := setUmask(*umask); err != nil {
			return nil, nil, util.StatusWrap(err, "Failed to set umask")
		}
	}

	// Set resource limits, if provided.
	for name, resourceLimit := range configuration.SetResourceLimits {
		if err := setResourceLimit(name, resourceLimit); err != nil {
			return nil, nil, util.StatusWrapf(err, "Failed to set resource limit %#v", name)
		}
	}

	// Logging.
	logPaths := configuration.LogPaths
	logWriters := append(make([]io.Writer, 0, len(logPaths)+1), os.Stderr)
	for _, logPath := range logPaths {
		w, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
		if err != nil {
			return nil, nil, util.StatusWrapf(err, "Failed to open log path %#v", logPath)
		}
		logWriters = append(logWriters, w)
	}
	log.SetOutput(io.MultiWriter(logWriters...))

	// Perform tracing using OpenTelemetry.
	var tracerProvider trace.TracerProvider = noop.NewTracerProvider()
	if tracingConfiguration := configuration.Tracing; tracingConfiguration != nil {
		tracerProviderOptions, err := newTracerProviderOptionsFromConfiguration(tracingConfiguration)
		if err != nil {
			return nil, nil, err
		}
		tracerProvider = sdktrace.NewTracerProvider(tracerProviderOptions...)
		otel.SetTracerProvider(tracerProvider)

		// Construct a propagator which supports both the context and Zipkin B3 propagation standards.
		propagator := propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader)),
		)
		otel.SetTextMapPropagator(propagator)
	}

	// Enable mutex profiling.
	runtime.SetMutexProfileFraction(configuration.MutexProfileFraction)

	// Periodically push metrics to a Prometheus Pushgateway, as
	// opposed to letting the Prometheus server scrape the metrics.
	if pushgateway := configuration.PrometheusPushgateway; pushgateway != nil {
		if err := startPushingMetrics(pushgateway, clock.SystemClock); err != nil {
			return nil, nil, err
		}
	}

	return &DiagnosticsServer{
		config: configuration.DiagnosticsHTTPServer,
	}, tracerProvider, nil
}

func newTracerProviderOptionsFromConfiguration(configuration *TracingConfiguration) ([]sdktrace.TracerProviderOption, error) {
	var tracerProviderOptions []sdktrace.TracerProviderOption
	for i, backend := range configuration.Backends {
		// Construct a SpanExporter.
		var spanExporter sdktrace.SpanExporter
		if backend.JaegerCollectorSpanExporter != nil && backend.OTLPSpanExporter != nil {
			return nil, status.Errorf(codes.InvalidArgument, "Tracing backend %d contains multiple span exporters", i)
		}
		if jaegerConfiguration := backend.JaegerCollectorSpanExporter; jaegerConfiguration != nil {
			// Convert Jaeger collector configuration to a list
			// of options.
			var collectorEndpointOptions []jaeger.CollectorEndpointOption
			if endpoint := jaegerConfiguration.Endpoint; endpoint != "" {
				collectorEndpointOptions = append(collectorEndpointOptions, jaeger.WithEndpoint(endpoint))
			}
			collectorEndpointOptions = append(collectorEndpointOptions, jaeger.WithHTTPClient(&http.Client{
				Transport: bb_http.NewMetricsRoundTripper(http.DefaultTransport, "Jaeger"),
			}))
			if username := jaegerConfiguration.Username; username != "" {
				collectorEndpointOptions = append(collectorEndpointOptions, jaeger.WithUsername(username))
			}
			if password := jaegerConfiguration.Password; password != "" {
				collectorEndpointOptions = append(collectorEndpointOptions, jaeger.WithPassword(password))
			}

			exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(collectorEndpointOptions...))
			if err != nil {
				return nil, util.StatusWrapf(err, "Failed to create Jaeger collector span exporter for backend %d", i)
			}
			spanExporter = exporter
		} else if otlpConfiguration := backend.OTLPSpanExporter; otlpConfiguration != nil {
			if otlpConfiguration.Address == "" {
				return nil, status.Errorf(codes.InvalidArgument, "OTLP span exporter of tracing backend %d has no address", i)
			}
			transportCredentials := credentials.NewClientTLSFromCert(nil, "")
			if otlpConfiguration.Insecure {
				transportCredentials = insecure.NewCredentials()
			}
			// Connections are established lazily, so an
			// unreachable collector does not prevent startup.
			conn, err := grpc.NewClient(otlpConfiguration.Address, grpc.WithTransportCredentials(transportCredentials))
			if err != nil {
				return nil, util.StatusWrapf(err, "Failed to create OTLP gRPC client for backend %d", i)
			}
			exporter, err := otlptrace.New(context.Background(), bb_otel.NewGRPCOTLPTraceClient(conn))
			if err != nil {
				return nil, util.StatusWrapf(err, "Failed to create OTLP span exporter for backend %d", i)
			}
			spanExporter = exporter
		} else {
			return nil, status.Errorf(codes.InvalidArgument, "Tracing backend %d does not contain a valid span exporter", i)
		}

		// Wrap it in a SpanProcessor.
		var spanProcessor sdktrace.SpanProcessor
		if batchConfiguration := backend.BatchSpanProcessor; batchConfiguration != nil {
			var batchSpanProcessorOptions []sdktrace.BatchSpanProcessorOption
			if d := batchConfiguration.BatchTimeout; d != nil {
				batchSpanProcessorOptions = append(batchSpanProcessorOptions, sdktrace.WithBatchTimeout(d.AsDuration()))
			}
			if batchConfiguration.Blocking {
				batchSpanProcessorOptions = append(batchSpanProcessorOptions, sdktrace.WithBlocking())
			}
			if d := batchConfiguration.ExportTimeout; d != nil {
				batchSpanProcessorOptions = append(batchSpanProcessorOptions, sdktrace.WithExportTimeout(d.AsDuration()))
			}
			if size := batchConfiguration.MaxExportBatchSize; size != 0 {
				batchSpanProcessorOptions = append(batchSpanProcessorOptions, sdktrace.WithMaxExportBatchSize(size))
			}
			if size := batchConfiguration.MaxQueueSize; size != 0 {
				batchSpanProcessorOptions = append(batchSpanProcessorOptions, sdktrace.WithMaxQueueSize(size))
			}
			spanProcessor = sdktrace.NewBatchSpanProcessor(spanExporter, batchSpanProcessorOptions...)
		} else {
			spanProcessor = sdktrace.NewSimpleSpanProcessor(spanExporter)
		}
		tracerProviderOptions = append(tracerProviderOptions, sdktrace.WithSpanProcessor(spanProcessor))
	}

	// Set resource attributes, so that this process can be
	// identified uniquely.
	keys := make([]string, 0, len(configuration.ResourceAttributes))
	for key := range configuration.ResourceAttributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	resourceAttributes := make([]attribute.KeyValue, 0, len(keys))
	for _, key := range keys {
		resourceAttributes = append(resourceAttributes, attribute.String(key, configuration.ResourceAttributes[key]))
	}
	tracerProviderOptions = append(
		tracerProviderOptions,
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, resourceAttributes...)))

	// Create a Sampler, acting as a policy for when to sample.
	sampler, err := newSamplerFromConfiguration(configuration.Sampler, clock.SystemClock)
	if err != nil {
		return nil, util.StatusWrap(err, "Failed to create sampler")
	}
	return append(tracerProviderOptions, sdktrace.WithSampler(sampler)), nil
}

// newSamplerFromConfiguration creates a OpenTelemetry Sampler based on
// a configuration file.
func newSamplerFromConfiguration(configuration *SamplerConfiguration, clock clock.Clock) (sdktrace.Sampler, error) {
	switch {
	case configuration == nil:
		return nil, status.Error(codes.InvalidArgument, "No configuration provided")
	case configuration.Always:
		return sdktrace.AlwaysSample(), nil
	case configuration.Never:
		return sdktrace.NeverSample(), nil
	case configuration.ParentBased != nil:
		policy := configuration.ParentBased
		noParent, err := newSamplerFromConfiguration(policy.NoParent, clock)
		if err != nil {
			return nil, util.StatusWrap(err, "No parent")
		}
		localParentNotSampled, err := newSamplerFromConfiguration(policy.LocalParentNotSampled, clock)
		if err != nil {
			return nil, util.StatusWrap(err, "Local parent not sampled")
		}
		localParentSampled, err := newSamplerFromConfiguration(policy.LocalParentSampled, clock)
		if err != nil {
			return nil, util.StatusWrap(err, "Local parent sampled")
		}
		remoteParentNotSampled, err := newSamplerFromConfiguration(policy.RemoteParentNotSampled, clock)
		if err != nil {
			return nil, util.StatusWrap(err, "Remote parent not sampled")
		}
		remoteParentSampled, err := newSamplerFromConfiguration(policy.RemoteParentSampled, clock)
		if err != nil {
			return nil, util.StatusWrap(err, "Remote parent sampled")
		}
		return sdktrace.ParentBased(
			noParent,
			sdktrace.WithLocalParentNotSampled(localParentNotSampled),
			sdktrace.WithLocalParentSampled(localParentSampled),
			sdktrace.WithRemoteParentNotSampled(remoteParentNotSampled),
			sdktrace.WithRemoteParentSampled(remoteParentSampled)), nil
	case configuration.TraceIDRatioBased != nil:
		return sdktrace.TraceIDRatioBased(*configuration.TraceIDRatioBased), nil
	case configuration.MaximumRate != nil:
		policy := configuration.MaximumRate
		if policy.SamplesPerEpoch <= 0 || policy.EpochDuration <= 0 {
			return nil, status.Error(codes.InvalidArgument, "Maximum rate sampler requires a positive number of samples per epoch and epoch duration")
		}
		return bb_otel.NewMaximumRateSampler(
			clock,
			policy.SamplesPerEpoch,
			policy.EpochDuration.AsDuration()), nil
	default:
		return nil, status.Error(codes.InvalidArgument, "Unknown sampling policy")
	}
}

func startPushingMetrics(configuration *PrometheusPushgatewayConfiguration, clock clock.Clock) error {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if pattern := configuration.MetricNamePattern; pattern != "" {
		namePattern, err := regexp.Compile(pattern)
		if err != nil {
			return status.Errorf(codes.InvalidArgument, "Invalid Prometheus Pushgateway metric name pattern: %s", err)
		}
		gatherer = bb_prometheus.NewNameFilteringGatherer(gatherer, namePattern)
	}

	pusher := push.New(configuration.URL, configuration.Job)
	pusher.Gatherer(gatherer)
	for key, value := range configuration.Grouping {
		pusher.Grouping(key, value)
	}
	pusher.Client(&http.Client{
		Transport: bb_http.NewMetricsRoundTripper(http.DefaultTransport, "Pushgateway"),
	})

	pushInterval := configuration.PushInterval.AsDuration()
	if pushInterval <= 0 {
		return status.Error(codes.InvalidArgument, "Prometheus Pushgateway push interval must be positive")
	}
	go func() {
		ticker, t := clock.NewTicker(pushInterval)
		defer ticker.Stop()
		for {
			if err := pusher.Push(); err != nil {
				log.Print("Failed to push metrics to Prometheus Pushgateway: ", err)
			}
			<-t
		}
	}()
	return nil
}
